package util

import (
	"fmt"
	"regexp"
	"strings"
)

var collectionNameRegexp = regexp.MustCompile("[^a-z0-9_-]+")

const maxCollectionNameLength = 255

// GenerateCollectionName builds a valid vector DB collection name for a
// repository's audit documents. Embeddings from different models are not
// comparable, so the model is part of the name.
func GenerateCollectionName(repoFullName, embedderName string) string {
	safeRepoName := strings.ToLower(strings.ReplaceAll(repoFullName, "/", "-"))
	safeEmbedderName := strings.ToLower(strings.Split(embedderName, ":")[0])

	safeRepoName = collectionNameRegexp.ReplaceAllString(safeRepoName, "")
	safeEmbedderName = collectionNameRegexp.ReplaceAllString(safeEmbedderName, "")

	collectionName := fmt.Sprintf("audit-%s-%s", safeRepoName, safeEmbedderName)
	if len(collectionName) > maxCollectionNameLength {
		collectionName = collectionName[:maxCollectionNameLength]
	}
	return collectionName
}

// LockKey identifies a pull request across repositories.
func LockKey(repoFullName string, prNumber int) string {
	return fmt.Sprintf("%s#%d", strings.ToLower(repoFullName), prNumber)
}
