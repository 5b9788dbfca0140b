// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package handlers

import (
	"bytes"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"strings"
	"testing"

	"inkwell/internal/storage"
)

// uploadsHandler builds an Uploads handler writing to a temp directory.
// These tests need no database, so they run everywhere.
func uploadsHandler(t *testing.T) *Uploads {
	t.Helper()
	local, err := storage.NewLocal(t.TempDir())
	if err != nil {
		t.Fatalf("NewLocal: %v", err)
	}
	return NewUploads(nil, local, true)
}

// multipartImage builds a multipart body with a single "image" part.
func multipartImage(t *testing.T, field, filename, contentType string, data []byte) (*bytes.Buffer, string) {
	t.Helper()

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)

	h := textproto.MIMEHeader{}
	h.Set("Content-Disposition", `form-data; name="`+field+`"; filename="`+filename+`"`)
	h.Set("Content-Type", contentType)
	part, err := mw.CreatePart(h)
	if err != nil {
		t.Fatalf("CreatePart: %v", err)
	}
	part.Write(data)
	mw.Close()

	return &buf, mw.FormDataContentType()
}

func TestUploadCreate(t *testing.T) {
	u := uploadsHandler(t)

	body, contentType := multipartImage(t, "image", "photo.PNG", "image/png", []byte("fake png bytes"))
	r := httptest.NewRequest("POST", "/uploads", body)
	r.Header.Set("Content-Type", contentType)

	w := httptest.NewRecorder()
	u.Create(w, r)

	if w.Code != http.StatusCreated {
		t.Fatalf("status: got %d, want 201 (body %s)", w.Code, w.Body.String())
	}

	var resp struct {
		Path string `json:"path"`
	}
	if err := json.NewDecoder(w.Body).Decode(&resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if !strings.HasPrefix(resp.Path, "/uploads/") {
		t.Errorf("path: got %q, want /uploads/ prefix", resp.Path)
	}
	if !strings.HasSuffix(resp.Path, ".png") {
		t.Errorf("path: got %q, want lowercased .png extension", resp.Path)
	}
}

func TestUploadRejectsNonImage(t *testing.T) {
	u := uploadsHandler(t)

	body, contentType := multipartImage(t, "image", "script.sh", "application/x-sh", []byte("#!/bin/sh"))
	r := httptest.NewRequest("POST", "/uploads", body)
	r.Header.Set("Content-Type", contentType)

	w := httptest.NewRecorder()
	u.Create(w, r)

	if w.Code != http.StatusBadRequest {
		t.Errorf("status: got %d, want 400", w.Code)
	}
}

func TestUploadMissingField(t *testing.T) {
	u := uploadsHandler(t)

	body, contentType := multipartImage(t, "wrong-field", "photo.png", "image/png", []byte("data"))
	r := httptest.NewRequest("POST", "/uploads", body)
	r.Header.Set("Content-Type", contentType)

	w := httptest.NewRecorder()
	u.Create(w, r)

	if w.Code != http.StatusBadRequest {
		t.Errorf("status: got %d, want 400", w.Code)
	}
}

func TestUploadTooLarge(t *testing.T) {
	u := uploadsHandler(t)

	big := bytes.Repeat([]byte("x"), maxUploadSize+1)
	body, contentType := multipartImage(t, "image", "huge.png", "image/png", big)
	r := httptest.NewRequest("POST", "/uploads", body)
	r.Header.Set("Content-Type", contentType)

	w := httptest.NewRecorder()
	u.Create(w, r)

	if w.Code != http.StatusBadRequest {
		t.Errorf("status: got %d, want 400", w.Code)
	}
}
