package main

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
)

const exampleEmailFile = `Server: smtp.example.com
User: me@example.com
Password: change-me
To: you@example.com
CC: first@example.com, second@example.com
BCC: archive@example.com
Subject: Hello from mailfile
Body: Hi,
everything after the Body: line is sent as the message text,
including lines that look like fields, such as
Subject: this stays in the body.
`

// handleInit writes a template email file to path, or to w when path is "-".
// Existing files are never overwritten.
func handleInit(w io.Writer, path string) error {
	if path == "-" {
		_, err := io.WriteString(w, exampleEmailFile)
		return err
	}

	if _, err := os.Stat(path); err == nil {
		return fmt.Errorf("%s already exists", path)
	} else if !errors.Is(err, fs.ErrNotExist) {
		return err
	}

	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("failed to create directory: %w", err)
		}
	}
	// The file holds a password.
	if err := os.WriteFile(path, []byte(exampleEmailFile), 0o600); err != nil {
		return fmt.Errorf("failed to write email file: %w", err)
	}
	fmt.Fprintf(w, "Created email file at: %s\n", path)
	fmt.Fprintln(w, "Please edit the file to add your server, credentials and recipients.")
	return nil
}
