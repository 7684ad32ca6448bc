package server

import (
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"

	"reelsnap/internal/jobs"
	"reelsnap/internal/logging"
)

const descriptionField = "description"
const imagesField = "images"

type uploadResponse struct {
	JobID  string `json:"job_id"`
	Images int    `json:"images"`
}

type jobView struct {
	ID     string `json:"id"`
	Images int    `json:"images"`
	Status string `json:"status"`
}

type reelView struct {
	Name     string    `json:"name"`
	Size     int64     `json:"size"`
	Modified time.Time `json:"modified"`
}

func (s *Server) handleJobs(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodPost:
		s.handleUpload(w, r)
	case http.MethodGet:
		s.handleListJobs(w, r)
	default:
		s.writeError(w, http.StatusMethodNotAllowed, "method not allowed")
	}
}

// handleUpload accepts a multipart bundle and publishes it as a job
// directory. Files land in a dot-prefixed staging directory first; the
// scanner ignores dotted entries, so the final rename is the moment the job
// becomes visible, never earlier.
func (s *Server) handleUpload(w http.ResponseWriter, r *http.Request) {
	maxBytes := int64(s.cfg.Server.MaxUploadMB) << 20
	r.Body = http.MaxBytesReader(w, r.Body, maxBytes)
	if err := r.ParseMultipartForm(maxBytes); err != nil {
		s.writeError(w, http.StatusBadRequest, fmt.Sprintf("parse upload: %v", err))
		return
	}
	defer func() {
		_ = r.MultipartForm.RemoveAll()
	}()

	description := strings.TrimSpace(r.FormValue(descriptionField))
	if description == "" {
		s.writeError(w, http.StatusBadRequest, "description is required")
		return
	}

	files := r.MultipartForm.File[imagesField]
	if len(files) == 0 {
		s.writeError(w, http.StatusBadRequest, "at least one image is required")
		return
	}
	for _, header := range files {
		if name := sanitizeFilename(header.Filename); name == "" || !jobs.RecognizedImage(name) {
			s.writeError(w, http.StatusBadRequest, fmt.Sprintf("unsupported image %q", header.Filename))
			return
		}
	}

	jobID := uuid.NewString()
	stagingDir := filepath.Join(s.source.Root(), "."+jobID)
	if err := os.MkdirAll(stagingDir, 0o755); err != nil {
		s.writeError(w, http.StatusInternalServerError, "create job directory failed")
		return
	}
	cleanup := func() { _ = os.RemoveAll(stagingDir) }

	names, err := s.writeImages(stagingDir, files)
	if err != nil {
		cleanup()
		s.writeError(w, http.StatusInternalServerError, "store images failed")
		return
	}
	if err := os.WriteFile(filepath.Join(stagingDir, jobs.DescriptionFile), []byte(description+"\n"), 0o644); err != nil {
		cleanup()
		s.writeError(w, http.StatusInternalServerError, "store description failed")
		return
	}
	manifest := buildUploadManifest(names, s.cfg.Assembly.FrameSeconds)
	if err := os.WriteFile(filepath.Join(stagingDir, jobs.ManifestFile), []byte(manifest), 0o644); err != nil {
		cleanup()
		s.writeError(w, http.StatusInternalServerError, "store manifest failed")
		return
	}

	finalDir := filepath.Join(s.source.Root(), jobID)
	if err := os.Rename(stagingDir, finalDir); err != nil {
		cleanup()
		s.writeError(w, http.StatusInternalServerError, "publish job failed")
		return
	}

	s.logger.Info("job uploaded",
		logging.String(logging.FieldEventType, "job_uploaded"),
		logging.String(logging.FieldJobID, jobID),
		logging.Int("images", len(names)),
	)
	s.writeJSON(w, http.StatusCreated, uploadResponse{JobID: jobID, Images: len(names)})
}

// writeImages stores the uploaded files under index-prefixed sanitized names
// so upload order survives any later lexical sort.
func (s *Server) writeImages(dir string, files []*multipart.FileHeader) ([]string, error) {
	names := make([]string, 0, len(files))
	for i, header := range files {
		name := fmt.Sprintf("%03d_%s", i+1, sanitizeFilename(header.Filename))
		src, err := header.Open()
		if err != nil {
			return nil, err
		}
		dst, err := os.OpenFile(filepath.Join(dir, name), os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o644)
		if err != nil {
			_ = src.Close()
			return nil, err
		}
		_, copyErr := io.Copy(dst, src)
		_ = src.Close()
		if closeErr := dst.Close(); copyErr == nil {
			copyErr = closeErr
		}
		if copyErr != nil {
			return nil, copyErr
		}
		names = append(names, name)
	}
	return names, nil
}

func buildUploadManifest(names []string, frameSeconds int) string {
	var b strings.Builder
	for _, name := range names {
		fmt.Fprintf(&b, "file '%s'\n", name)
		fmt.Fprintf(&b, "duration %d\n", frameSeconds)
	}
	return b.String()
}

func (s *Server) handleListJobs(w http.ResponseWriter, r *http.Request) {
	found, err := s.source.List(r.Context())
	if err != nil {
		s.writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	done, err := s.ledger.Completed()
	if err != nil {
		s.writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	views := make([]jobView, 0, len(found))
	for _, job := range found {
		status := "pending"
		if _, ok := done[job.ID]; ok {
			status = "completed"
		}
		views = append(views, jobView{ID: job.ID, Images: len(job.ImagePaths), Status: status})
	}
	s.writeJSON(w, http.StatusOK, map[string][]jobView{"jobs": views})
}

func (s *Server) handleReels(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		s.writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	entries, err := os.ReadDir(s.cfg.Paths.ReelsDir)
	if err != nil {
		s.writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	views := make([]reelView, 0, len(entries))
	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || strings.HasPrefix(name, ".") || !strings.HasSuffix(name, ".mp4") {
			continue
		}
		info, err := entry.Info()
		if err != nil {
			continue
		}
		views = append(views, reelView{Name: name, Size: info.Size(), Modified: info.ModTime().UTC()})
	}
	s.writeJSON(w, http.StatusOK, map[string][]reelView{"reels": views})
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		s.writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	if s.status == nil {
		s.writeJSON(w, http.StatusOK, map[string]bool{"running": false})
		return
	}
	s.writeJSON(w, http.StatusOK, s.status(r.Context()))
}

func (s *Server) handleHealthz(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		s.writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	s.writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
