package server

import (
	"encoding/json"
	"fmt"
	"io"
	"mime"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"chaindrive/internal/domain"
)

func decodeJSON(r *http.Request, out any) error {
	if r.Body == nil || r.ContentLength == 0 {
		return nil
	}
	if err := json.NewDecoder(io.LimitReader(r.Body, 1<<20)).Decode(out); err != nil && err != io.EOF {
		return fmt.Errorf("%w: %v", errBadRequest, err)
	}
	return nil
}

func (s *Server) getSession(w http.ResponseWriter, r *http.Request) {
	JSONResponse(w, http.StatusOK, current(r).Snapshot())
}

func (s *Server) listFiles(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	var size int
	if v := q.Get("pageSize"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			ErrorResponse(w, fmt.Errorf("%w: pageSize", errBadRequest))
			return
		}
		size = n
	}
	res, err := s.files.List(r.Context(), current(r), domain.ListQuery{
		PageSize:  size,
		PageToken: q.Get("pageToken"),
		Query:     q.Get("q"),
	})
	if err != nil {
		ErrorResponse(w, err)
		return
	}
	JSONResponse(w, http.StatusOK, res)
}

func (s *Server) uploadFile(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, s.cfg.MaxUpload)
	if err := r.ParseMultipartForm(s.cfg.MaxUpload); err != nil {
		ErrorResponse(w, fmt.Errorf("%w: %v", errBadRequest, err))
		return
	}
	defer r.MultipartForm.RemoveAll()

	part, hdr, err := r.FormFile("file")
	if err != nil {
		ErrorResponse(w, fmt.Errorf("%w: %v", errBadRequest, err))
		return
	}
	defer part.Close()
	content, err := io.ReadAll(part)
	if err != nil {
		ErrorResponse(w, fmt.Errorf("%w: %v", errBadRequest, err))
		return
	}

	f, err := s.files.Upload(r.Context(), current(r), hdr.Filename, content, r.FormValue("folderId"))
	if err != nil {
		ErrorResponse(w, err)
		return
	}
	JSONResponse(w, http.StatusCreated, f)
}

func (s *Server) downloadFile(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	name := r.URL.Query().Get("name")
	b, err := s.files.Download(r.Context(), current(r), id, name)
	if err != nil {
		ErrorResponse(w, err)
		return
	}
	if name == "" {
		name = id
	}
	w.Header().Set("Content-Type", http.DetectContentType(b))
	w.Header().Set("Content-Disposition", mime.FormatMediaType("attachment", map[string]string{"filename": name}))
	w.Header().Set("Content-Length", strconv.Itoa(len(b)))
	_, _ = w.Write(b)
}

func (s *Server) deleteFile(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	if err := s.files.Delete(r.Context(), current(r), id, r.URL.Query().Get("name")); err != nil {
		ErrorResponse(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) createFolder(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Name     string `json:"name"`
		ParentID string `json:"parentId"`
	}
	if err := decodeJSON(r, &req); err != nil {
		ErrorResponse(w, err)
		return
	}
	f, err := s.files.CreateFolder(r.Context(), current(r), req.Name, req.ParentID)
	if err != nil {
		ErrorResponse(w, err)
		return
	}
	JSONResponse(w, http.StatusCreated, f)
}

func (s *Server) generateAccount(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Label string `json:"label"`
	}
	if err := decodeJSON(r, &req); err != nil {
		ErrorResponse(w, err)
		return
	}
	sess := current(r)
	if _, err := s.accounts.Generate(r.Context(), sess, req.Label); err != nil {
		ErrorResponse(w, err)
		return
	}
	// The snapshot carries the recovery phrase exactly once.
	snap := sess.Snapshot()
	sess.ClearRecoveryPhrase()
	JSONResponse(w, http.StatusCreated, snap.Account)
}

func (s *Server) persistAccount(w http.ResponseWriter, r *http.Request) {
	f, err := s.accounts.Persist(r.Context(), current(r))
	if err != nil {
		ErrorResponse(w, err)
		return
	}
	JSONResponse(w, http.StatusCreated, f)
}

func (s *Server) retrieveAccount(w http.ResponseWriter, r *http.Request) {
	sess := current(r)
	if _, err := s.accounts.Retrieve(r.Context(), sess); err != nil {
		ErrorResponse(w, err)
		return
	}
	// A legacy file carries its phrase; hand it out once like generate does.
	snap := sess.Snapshot()
	sess.ClearRecoveryPhrase()
	JSONResponse(w, http.StatusOK, snap.Account)
}

func (s *Server) submitTransaction(w http.ResponseWriter, r *http.Request) {
	res, err := s.txs.Submit(r.Context(), current(r))
	if err != nil {
		ErrorResponse(w, err)
		return
	}
	JSONResponse(w, http.StatusOK, res)
}
