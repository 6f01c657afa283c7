package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
)

// decodePayloadFile reads a JSON payload from path, or from stdin when
// path is "-".
func decodePayloadFile(path string, out any) error {
	var data []byte
	var err error
	if path == "-" {
		data, err = io.ReadAll(os.Stdin)
	} else {
		data, err = os.ReadFile(path)
	}
	if err != nil {
		return fmt.Errorf("read payload: %w", err)
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("decode payload: %w", err)
	}
	return nil
}
