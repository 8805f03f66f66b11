package main

import (
	"fmt"
	"net/http"
	"os"
)

// webHandler serves a front end from dir; empty dir means none.
func webHandler(dir string) (http.Handler, error) {
	if dir == "" {
		return nil, nil
	}
	fi, err := os.Stat(dir)
	if err != nil {
		return nil, fmt.Errorf("static dir: %w", err)
	}
	if !fi.IsDir() {
		return nil, fmt.Errorf("static dir: %s is not a directory", dir)
	}
	return http.FileServer(http.FS(os.DirFS(dir))), nil
}
