package domain

import (
	"fmt"
	"strings"
)

const (
	MetaFilename     = "meta.json"
	CoverFilename    = "cover.jpg"
	DocumentFilename = "document.pdf"

	// keySegments is <namespace>/<sourceId>/<year>/<issueId>/meta.json.
	keySegments = 5
)

// IssueKey is the decoded storage path of one issue's metadata record.
type IssueKey struct {
	Namespace string
	SourceID  string
	Year      string
	IssueID   string
	// BasePath is the folder prefix shared by the issue's files, with trailing slash.
	BasePath string
}

// Cover returns the store key of the cover image.
func (k IssueKey) Cover() string { return k.BasePath + CoverFilename }

// Document returns the store key of the PDF.
func (k IssueKey) Document() string { return k.BasePath + DocumentFilename }

// IsMetaKey reports whether the key's filename component is meta.json.
func IsMetaKey(key string) bool {
	i := strings.LastIndexByte(key, '/')
	return key[i+1:] == MetaFilename
}

// ParseIssueKey validates the fixed layout and extracts identifiers.
func ParseIssueKey(namespace, key string) (IssueKey, error) {
	parts := strings.Split(key, "/")
	if len(parts) != keySegments {
		return IssueKey{}, fmt.Errorf("key %q has %d segments, want %d", key, len(parts), keySegments)
	}
	for i, p := range parts {
		if p == "" {
			return IssueKey{}, fmt.Errorf("key %q has an empty segment at %d", key, i)
		}
	}
	if parts[0] != namespace {
		return IssueKey{}, fmt.Errorf("key %q is outside namespace %q", key, namespace)
	}
	if parts[4] != MetaFilename {
		return IssueKey{}, fmt.Errorf("key %q does not name %s", key, MetaFilename)
	}
	return IssueKey{
		Namespace: parts[0],
		SourceID:  parts[1],
		Year:      parts[2],
		IssueID:   parts[3],
		BasePath:  strings.TrimSuffix(key, MetaFilename),
	}, nil
}
