package domain

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
)

// SkipReason classifies why a metadata record was left out of the catalog.
type SkipReason string

const (
	SkipMalformedKey  SkipReason = "malformed_key"
	SkipInvalidJSON   SkipReason = "invalid_json"
	SkipFetchFailed   SkipReason = "fetch_failed"
	SkipMissingObject SkipReason = "missing_object"
)

// ParseResult is either ParsedIssue or SkippedKey.
type ParseResult interface {
	parseResult()
}

// ParsedIssue is a record that made it into the catalog.
type ParsedIssue struct {
	Issue Issue
}

// SkippedKey is a record dropped from the catalog. Skips never fail a request.
type SkippedKey struct {
	Key    string     `json:"key" cbor:"1,keyasint"`
	Reason SkipReason `json:"reason" cbor:"2,keyasint"`
	Detail string     `json:"detail,omitempty" cbor:"3,keyasint,omitempty"`
}

func (ParsedIssue) parseResult() {}
func (SkippedKey) parseResult()  {}

// Skip builds a SkippedKey carrying err's message.
func Skip(key string, reason SkipReason, err error) SkippedKey {
	s := SkippedKey{Key: key, Reason: reason}
	if err != nil {
		s.Detail = err.Error()
	}
	return s
}

// metaRecord is the meta.json document written by the upload tooling.
type metaRecord struct {
	Title         string         `json:"title"`
	IssueNumber   string         `json:"issueNumber"`
	PublishDate   string         `json:"publishDate"`
	Summary       string         `json:"summary"`
	KeyTakeaways  []string       `json:"keyTakeaways"`
	Tags          []string       `json:"tags,omitempty"`
	RelatedReport *RelatedReport `json:"relatedReport,omitempty"`
}

var utf8BOM = []byte("\xef\xbb\xbf")

var errNotObject = errors.New("metadata is not a JSON object")

// ParseIssue turns one metadata key and its raw content into a catalog
// entry, or a skip when the key or the content is unusable.
func ParseIssue(namespace, key string, data []byte) ParseResult {
	ik, err := ParseIssueKey(namespace, key)
	if err != nil {
		return Skip(key, SkipMalformedKey, err)
	}

	data = bytes.TrimSpace(bytes.TrimPrefix(data, utf8BOM))
	if len(data) == 0 || data[0] != '{' {
		return Skip(key, SkipInvalidJSON, errNotObject)
	}

	var meta metaRecord
	if err := json.Unmarshal(data, &meta); err != nil {
		return Skip(key, SkipInvalidJSON, fmt.Errorf("decode %s: %w", key, err))
	}

	takeaways := meta.KeyTakeaways
	if takeaways == nil {
		takeaways = []string{}
	}

	return ParsedIssue{Issue: Issue{
		ID:            ik.IssueID,
		SourceID:      ik.SourceID,
		Title:         meta.Title,
		IssueNumber:   meta.IssueNumber,
		PublishDate:   meta.PublishDate,
		Summary:       meta.Summary,
		KeyTakeaways:  takeaways,
		Tags:          meta.Tags,
		RelatedReport: meta.RelatedReport,
		Cover:         ik.Cover(),
		PDFURL:        ik.Document(),
	}}
}
