package main

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"

	"ytpulse/internal/comments"
)

// readComments loads a comment list from path, or stdin when path is "-".
// Both a bare JSON array and an object with a "comments" field (the collect
// --output format) are accepted.
func readComments(path string, stdin io.Reader) ([]comments.Comment, error) {
	var data []byte
	var err error
	if path == "-" {
		data, err = io.ReadAll(stdin)
	} else {
		data, err = os.ReadFile(path)
	}
	if err != nil {
		return nil, fmt.Errorf("read comments: %w", err)
	}
	data = bytes.TrimSpace(data)
	if len(data) == 0 {
		return nil, errors.New("read comments: input is empty")
	}

	var list []comments.Comment
	if data[0] == '[' {
		if err := json.Unmarshal(data, &list); err != nil {
			return nil, fmt.Errorf("decode comments: %w", err)
		}
	} else {
		var wrapped struct {
			Comments []comments.Comment `json:"comments"`
		}
		if err := json.Unmarshal(data, &wrapped); err != nil {
			return nil, fmt.Errorf("decode comments: %w", err)
		}
		list = wrapped.Comments
	}
	if len(list) == 0 {
		return nil, errors.New("read comments: no comments found")
	}
	return list, nil
}
