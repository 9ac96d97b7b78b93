package api

import (
	"encoding/json"
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/parthk/blockvault/pkg/errors"
	"github.com/parthk/blockvault/pkg/metadata"
	"github.com/parthk/blockvault/pkg/vault"
)

// maxUploadBytes caps multipart request memory buffering. Larger parts
// spill to disk via the multipart reader.
const maxUploadBytes = 32 << 20

// handlerFunc is a handler that returns an error instead of writing a status.
type handlerFunc func(w http.ResponseWriter, r *http.Request) error

// handle adapts a handlerFunc, converting returned errors into the JSON
// error envelope with the status derived from the error code.
func (s *Server) handle(h handlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := h(w, r); err != nil {
			s.writeError(w, r, err)
		}
	}
}

func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error) {
	status := errors.HTTPStatus(err)
	if status >= 500 {
		s.logger.Error("request failed", "method", r.Method, "path", r.URL.Path, "error", err)
	}
	writeJSON(w, status, map[string]string{
		"error": errors.UserMessage(err),
		"code":  string(errors.GetCode(err)),
	})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// uploadBlock accepts one client-sealed block as multipart form data.
// Fields: file (ciphertext), file_id, block_id, block_index, digest,
// auth_tag, iv, preview.
func (s *Server) uploadBlock(w http.ResponseWriter, r *http.Request) error {
	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		return errors.Wrap(errors.ErrCodeInvalidInput, err, "parse multipart form")
	}

	part, _, err := r.FormFile("file")
	if err != nil {
		return errors.Wrap(errors.ErrCodeInvalidInput, err, "missing file part")
	}
	defer part.Close()

	data, err := io.ReadAll(part)
	if err != nil {
		return errors.Wrap(errors.ErrCodeInvalidInput, err, "read file part")
	}

	index := 0
	if raw := r.FormValue("block_index"); raw != "" {
		index, err = strconv.Atoi(raw)
		if err != nil || index < 0 {
			return errors.New(errors.ErrCodeInvalidInput, "invalid block_index %q", raw)
		}
	}

	req := vault.UploadBlockRequest{
		FileID:  r.FormValue("file_id"),
		BlockID: r.FormValue("block_id"),
		Index:   index,
		Data:    data,
		Digest:  r.FormValue("digest"),
		AuthTag: r.FormValue("auth_tag"),
		IV:      r.FormValue("iv"),
		Preview: r.FormValue("preview"),
	}
	if err := s.svc.UploadBlock(r.Context(), req); err != nil {
		return err
	}

	writeJSON(w, http.StatusCreated, map[string]string{
		"block_id": req.BlockID,
		"file_id":  req.FileID,
	})
	return nil
}

// listBlocks returns a file's blocks in index order, with tags.
func (s *Server) listBlocks(w http.ResponseWriter, r *http.Request) error {
	fileID := chi.URLParam(r, "fileID")
	blocks, err := s.svc.Blocks(r.Context(), fileID)
	if err != nil {
		return err
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"file_id": fileID,
		"blocks":  blocks,
	})
	return nil
}

type verifyRequest struct {
	FileID   string   `json:"file_id"`
	BlockIDs []string `json:"block_ids"`
}

// verifyBlocks returns auth tags and plaintext digests for the requested
// blocks so a client can prove integrity without downloading content.
func (s *Server) verifyBlocks(w http.ResponseWriter, r *http.Request) error {
	var req verifyRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		return errors.Wrap(errors.ErrCodeInvalidInput, err, "decode request body")
	}
	if len(req.BlockIDs) == 0 {
		return errors.New(errors.ErrCodeInvalidInput, "block_ids is required")
	}

	v, err := s.svc.VerifyBlocks(r.Context(), req.FileID, req.BlockIDs)
	if err != nil {
		return err
	}
	writeJSON(w, http.StatusOK, v)
	return nil
}

// uploadFile ingests a whole file server-side: split, seal, tag, store.
func (s *Server) uploadFile(w http.ResponseWriter, r *http.Request) error {
	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		return errors.Wrap(errors.ErrCodeInvalidInput, err, "parse multipart form")
	}

	part, header, err := r.FormFile("file")
	if err != nil {
		return errors.Wrap(errors.ErrCodeInvalidInput, err, "missing file part")
	}
	defer part.Close()

	mimeType := header.Header.Get("Content-Type")
	if mimeType == "" {
		mimeType = "application/octet-stream"
	}

	stored, err := s.svc.StoreFile(r.Context(), header.Filename, mimeType, part)
	if err != nil {
		return err
	}
	writeJSON(w, http.StatusCreated, map[string]any{
		"file_id":  stored.File.ID,
		"urls":     stored.URLs,
		"metadata": stored.File,
	})
	return nil
}

// fileInfo returns a file record with its per-block object URLs.
func (s *Server) fileInfo(w http.ResponseWriter, r *http.Request) error {
	stored, err := s.svc.FileInfo(r.Context(), chi.URLParam(r, "fileID"))
	if err != nil {
		return err
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"file_id":  stored.File.ID,
		"urls":     stored.URLs,
		"metadata": stored.File,
	})
	return nil
}

// download streams the reassembled plaintext.
func (s *Server) download(w http.ResponseWriter, r *http.Request) error {
	fileID := chi.URLParam(r, "fileID")

	// Fetch the record first so a missing file is a clean 404 rather
	// than a broken stream.
	stored, err := s.svc.FileInfo(r.Context(), fileID)
	if err != nil {
		return err
	}

	mimeType := stored.File.MIMEType
	if mimeType == "" {
		mimeType = "application/octet-stream"
	}
	w.Header().Set("Content-Type", mimeType)
	w.Header().Set("Content-Length", strconv.FormatInt(stored.File.Size, 10))
	if stored.File.Name != "" {
		w.Header().Set("Content-Disposition", `attachment; filename="`+stored.File.Name+`"`)
	}

	_, err = s.svc.Download(r.Context(), fileID, w)
	return err
}

// search returns blocks ranked by keyword tag match.
func (s *Server) search(w http.ResponseWriter, r *http.Request) error {
	query := strings.TrimSpace(r.URL.Query().Get("q"))
	if query == "" {
		return errors.New(errors.ErrCodeInvalidInput, "query parameter q is required")
	}

	minScore := 0.0
	if raw := r.URL.Query().Get("min_score"); raw != "" {
		var err error
		minScore, err = strconv.ParseFloat(raw, 64)
		if err != nil || minScore < 0 {
			return errors.New(errors.ErrCodeInvalidInput, "invalid min_score %q", raw)
		}
	}

	results, err := s.svc.Search(r.Context(), query, minScore)
	if err != nil {
		return err
	}
	if results == nil {
		results = []metadata.SearchResult{}
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"query":   query,
		"results": results,
	})
	return nil
}
