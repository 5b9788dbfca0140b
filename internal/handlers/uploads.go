// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package handlers

import (
	"log/slog"
	"net/http"
	"strings"

	"inkwell/internal/storage"
)

// maxUploadSize caps image uploads at 5 MB.
const maxUploadSize = 5 << 20

// Uploads handles image uploads. When an S3 client is configured files go
// to the object store, otherwise to the local uploads directory.
type Uploads struct {
	s3      *storage.S3Client
	local   *storage.Local
	devMode bool
}

// NewUploads creates a new Uploads handler. s3 may be nil.
func NewUploads(s3 *storage.S3Client, local *storage.Local, devMode bool) *Uploads {
	return &Uploads{s3: s3, local: local, devMode: devMode}
}

// Create accepts a multipart form with an "image" file field and returns the
// path under which the stored file can be referenced.
func (u *Uploads) Create(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxUploadSize)
	if err := r.ParseMultipartForm(maxUploadSize); err != nil {
		respondMessage(w, http.StatusBadRequest, "Image too large or invalid form (max 5 MB)")
		return
	}

	file, header, err := r.FormFile("image")
	if err != nil {
		respondValidation(w, []FieldError{{"image", "image file required"}})
		return
	}
	defer file.Close()

	contentType := header.Header.Get("Content-Type")
	if !strings.HasPrefix(contentType, "image/") {
		respondValidation(w, []FieldError{{"image", "only image files are allowed"}})
		return
	}

	var path string
	if u.s3 != nil {
		path, err = u.s3.Save(r.Context(), header.Filename, contentType, file, header.Size)
	} else {
		path, err = u.local.Save(header.Filename, file)
	}
	if err != nil {
		slog.Error("save upload failed", "error", err)
		respondInternal(w, u.devMode, err)
		return
	}

	respondJSON(w, http.StatusCreated, map[string]string{"path": path})
}
