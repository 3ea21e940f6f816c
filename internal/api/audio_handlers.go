package api

import (
	"context"
	"io"
	"log"
	"net/http"
	"path/filepath"
	"strings"

	"github.com/dhowden/tag"
	"github.com/go-chi/chi/v5"
	"github.com/lorelight/lorelight-go/internal/database/models"
)

// maxUploadBytes caps multipart parsing for audio uploads.
const maxUploadBytes = 200 << 20

type audioFileRequest struct {
	Name     string   `json:"name"`
	FolderID *string  `json:"folderId"`
	Tags     *string  `json:"tags"`
	Duration *float64 `json:"duration"`
}

func (s *Server) handleListAudioFiles(w http.ResponseWriter, r *http.Request) {
	files, err := s.deps.Audio.FindFilesByUserID(r.Context(), userID(r))
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to list audio files")
		return
	}
	writeJSON(w, http.StatusOK, files)
}

// handleUploadAudioFile accepts a multipart form with a "file" field plus
// optional "name" and "folderId" fields. The file is pushed to object
// storage and a library record is created from its metadata.
func (s *Server) handleUploadAudioFile(w http.ResponseWriter, r *http.Request) {
	if s.deps.Uploader == nil {
		writeError(w, http.StatusServiceUnavailable, "object storage is not configured")
		return
	}

	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		writeError(w, http.StatusBadRequest, "invalid multipart form")
		return
	}
	file, header, err := r.FormFile("file")
	if err != nil {
		writeError(w, http.StatusBadRequest, "file field is required")
		return
	}
	defer file.Close()

	name := r.FormValue("name")
	format := strings.TrimPrefix(strings.ToLower(filepath.Ext(header.Filename)), ".")

	// Embedded tags beat the filename for display names. Failure to parse
	// is normal for untagged files.
	if meta, err := tag.ReadFrom(file); err == nil {
		if name == "" && meta.Title() != "" {
			name = meta.Title()
		}
		if ft := meta.FileType(); ft != tag.UnknownFileType {
			format = strings.ToLower(string(ft))
		}
	}
	if name == "" {
		name = strings.TrimSuffix(header.Filename, filepath.Ext(header.Filename))
	}
	if _, err := file.Seek(0, io.SeekStart); err != nil {
		writeError(w, http.StatusInternalServerError, "failed to read upload")
		return
	}

	contentType := header.Header.Get("Content-Type")
	result, err := s.deps.Uploader.Upload(r.Context(), userID(r), header.Filename, contentType, file)
	if err != nil {
		log.Printf("Audio upload failed: %v", err)
		s.deps.Metrics.UploadFailures.Inc()
		writeError(w, http.StatusBadGateway, "upload to storage failed")
		return
	}
	s.deps.Metrics.AudioUploads.Inc()

	record := &models.AudioFile{
		UserID:     userID(r),
		Name:       name,
		FileURL:    result.URL,
		StorageKey: result.Key,
		FileSize:   header.Size,
	}
	if format != "" {
		record.Format = &format
	}
	if folderID := r.FormValue("folderId"); folderID != "" {
		record.FolderID = &folderID
	}

	// Container tags carry no stream length; the client reports duration
	// through PUT /audio/files/{id} once its element has loaded metadata.
	if err := s.deps.Audio.CreateFile(r.Context(), record); err != nil {
		writeError(w, http.StatusInternalServerError, "failed to save audio file")
		return
	}
	s.deps.AudioFileStore.Insert(*record)
	writeJSON(w, http.StatusCreated, record)
}

func (s *Server) loadOwnAudioFile(w http.ResponseWriter, r *http.Request, id string) *models.AudioFile {
	file, err := s.deps.Audio.FindFileByID(r.Context(), id)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to load audio file")
		return nil
	}
	if file == nil || file.UserID != userID(r) {
		writeError(w, http.StatusNotFound, "audio file not found")
		return nil
	}
	return file
}

func (s *Server) handleGetAudioFile(w http.ResponseWriter, r *http.Request) {
	file := s.loadOwnAudioFile(w, r, chi.URLParam(r, "fileID"))
	if file == nil {
		return
	}
	writeJSON(w, http.StatusOK, file)
}

func (s *Server) handleUpdateAudioFile(w http.ResponseWriter, r *http.Request) {
	file := s.loadOwnAudioFile(w, r, chi.URLParam(r, "fileID"))
	if file == nil {
		return
	}

	var req audioFileRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	patch := func(f models.AudioFile) models.AudioFile {
		if req.Name != "" {
			f.Name = req.Name
		}
		if req.FolderID != nil {
			f.FolderID = req.FolderID
		}
		if req.Tags != nil {
			f.Tags = req.Tags
		}
		if req.Duration != nil {
			f.Duration = req.Duration
		}
		return f
	}

	s.deps.AudioFileStore.Insert(*file)
	updated, err := s.deps.AudioFileStore.Update(r.Context(), file.ID, patch,
		func(ctx context.Context) (models.AudioFile, error) {
			record := patch(*file)
			if err := s.deps.Audio.UpdateFile(ctx, &record); err != nil {
				return models.AudioFile{}, err
			}
			return record, nil
		})
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to update audio file: "+s.deps.AudioFileStore.LastError())
		return
	}
	writeJSON(w, http.StatusOK, updated)
}

func (s *Server) handleDeleteAudioFile(w http.ResponseWriter, r *http.Request) {
	file := s.loadOwnAudioFile(w, r, chi.URLParam(r, "fileID"))
	if file == nil {
		return
	}

	s.deps.AudioFileStore.Insert(*file)
	err := s.deps.AudioFileStore.Delete(r.Context(), file.ID, func(ctx context.Context) error {
		return s.deps.Audio.DeleteFile(ctx, file.ID)
	})
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to delete audio file: "+s.deps.AudioFileStore.LastError())
		return
	}

	// The library record is gone either way; a stranded object only costs
	// storage, so removal failures are logged and not surfaced.
	if s.deps.Uploader != nil && file.StorageKey != "" {
		if err := s.deps.Uploader.Delete(r.Context(), file.StorageKey); err != nil {
			log.Printf("Failed to delete stored object %s: %v", file.StorageKey, err)
		}
	}
	writeJSON(w, http.StatusOK, map[string]bool{"deleted": true})
}

type folderRequest struct {
	Name     string  `json:"name"`
	ParentID *string `json:"parentId"`
}

func (s *Server) handleListAudioFolders(w http.ResponseWriter, r *http.Request) {
	folders, err := s.deps.Audio.FindFoldersByUserID(r.Context(), userID(r))
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to list folders")
		return
	}
	writeJSON(w, http.StatusOK, folders)
}

func (s *Server) handleCreateAudioFolder(w http.ResponseWriter, r *http.Request) {
	var req folderRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if req.Name == "" {
		writeError(w, http.StatusBadRequest, "name is required")
		return
	}

	folder := &models.AudioFolder{
		UserID:   userID(r),
		Name:     req.Name,
		ParentID: req.ParentID,
	}
	if err := s.deps.Audio.CreateFolder(r.Context(), folder); err != nil {
		writeError(w, http.StatusInternalServerError, "failed to create folder")
		return
	}
	writeJSON(w, http.StatusCreated, folder)
}

func (s *Server) loadOwnFolder(w http.ResponseWriter, r *http.Request, id string) *models.AudioFolder {
	folder, err := s.deps.Audio.FindFolderByID(r.Context(), id)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to load folder")
		return nil
	}
	if folder == nil || folder.UserID != userID(r) {
		writeError(w, http.StatusNotFound, "folder not found")
		return nil
	}
	return folder
}

func (s *Server) handleAudioFolderPath(w http.ResponseWriter, r *http.Request) {
	folder := s.loadOwnFolder(w, r, chi.URLParam(r, "folderID"))
	if folder == nil {
		return
	}
	path, err := s.deps.Audio.FolderPath(r.Context(), folder.ID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to resolve folder path")
		return
	}
	writeJSON(w, http.StatusOK, path)
}

func (s *Server) handleUpdateAudioFolder(w http.ResponseWriter, r *http.Request) {
	folder := s.loadOwnFolder(w, r, chi.URLParam(r, "folderID"))
	if folder == nil {
		return
	}

	var req folderRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if req.Name != "" {
		folder.Name = req.Name
	}
	if req.ParentID != nil {
		folder.ParentID = req.ParentID
	}

	if err := s.deps.Audio.UpdateFolder(r.Context(), folder); err != nil {
		writeError(w, http.StatusInternalServerError, "failed to update folder")
		return
	}
	writeJSON(w, http.StatusOK, folder)
}

func (s *Server) handleDeleteAudioFolder(w http.ResponseWriter, r *http.Request) {
	folder := s.loadOwnFolder(w, r, chi.URLParam(r, "folderID"))
	if folder == nil {
		return
	}
	if err := s.deps.Audio.DeleteFolder(r.Context(), folder.ID); err != nil {
		writeError(w, http.StatusInternalServerError, "failed to delete folder")
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"deleted": true})
}

type playlistRequest struct {
	Name        string  `json:"name"`
	Description *string `json:"description"`
}

func (s *Server) handleListPlaylists(w http.ResponseWriter, r *http.Request) {
	playlists, err := s.deps.Audio.FindPlaylistsByUserID(r.Context(), userID(r))
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to list playlists")
		return
	}
	writeJSON(w, http.StatusOK, playlists)
}

func (s *Server) handleCreatePlaylist(w http.ResponseWriter, r *http.Request) {
	var req playlistRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if req.Name == "" {
		writeError(w, http.StatusBadRequest, "name is required")
		return
	}

	playlist := &models.AudioPlaylist{
		UserID:      userID(r),
		Name:        req.Name,
		Description: req.Description,
	}
	if err := s.deps.Audio.CreatePlaylist(r.Context(), playlist); err != nil {
		writeError(w, http.StatusInternalServerError, "failed to create playlist")
		return
	}
	writeJSON(w, http.StatusCreated, playlist)
}

func (s *Server) loadOwnPlaylist(w http.ResponseWriter, r *http.Request, id string) *models.AudioPlaylist {
	playlist, err := s.deps.Audio.FindPlaylistByID(r.Context(), id)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to load playlist")
		return nil
	}
	if playlist == nil || playlist.UserID != userID(r) {
		writeError(w, http.StatusNotFound, "playlist not found")
		return nil
	}
	return playlist
}

func (s *Server) handleGetPlaylist(w http.ResponseWriter, r *http.Request) {
	playlist := s.loadOwnPlaylist(w, r, chi.URLParam(r, "playlistID"))
	if playlist == nil {
		return
	}
	writeJSON(w, http.StatusOK, playlist)
}

func (s *Server) handleUpdatePlaylist(w http.ResponseWriter, r *http.Request) {
	playlist := s.loadOwnPlaylist(w, r, chi.URLParam(r, "playlistID"))
	if playlist == nil {
		return
	}

	var req playlistRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if req.Name != "" {
		playlist.Name = req.Name
	}
	if req.Description != nil {
		playlist.Description = req.Description
	}

	if err := s.deps.Audio.UpdatePlaylist(r.Context(), playlist); err != nil {
		writeError(w, http.StatusInternalServerError, "failed to update playlist")
		return
	}
	writeJSON(w, http.StatusOK, playlist)
}

func (s *Server) handleDeletePlaylist(w http.ResponseWriter, r *http.Request) {
	playlist := s.loadOwnPlaylist(w, r, chi.URLParam(r, "playlistID"))
	if playlist == nil {
		return
	}
	if err := s.deps.Audio.DeletePlaylist(r.Context(), playlist.ID); err != nil {
		writeError(w, http.StatusInternalServerError, "failed to delete playlist")
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"deleted": true})
}

func (s *Server) handleAddPlaylistTrack(w http.ResponseWriter, r *http.Request) {
	playlist := s.loadOwnPlaylist(w, r, chi.URLParam(r, "playlistID"))
	if playlist == nil {
		return
	}

	var req struct {
		AudioFileID string `json:"audioFileId"`
	}
	if !decodeJSON(w, r, &req) {
		return
	}
	if req.AudioFileID == "" {
		writeError(w, http.StatusBadRequest, "audioFileId is required")
		return
	}
	if s.loadOwnAudioFile(w, r, req.AudioFileID) == nil {
		return
	}

	track, err := s.deps.Audio.AddTrack(r.Context(), playlist.ID, req.AudioFileID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to add track")
		return
	}
	writeJSON(w, http.StatusCreated, track)
}

func (s *Server) handleRemovePlaylistTrack(w http.ResponseWriter, r *http.Request) {
	playlist := s.loadOwnPlaylist(w, r, chi.URLParam(r, "playlistID"))
	if playlist == nil {
		return
	}

	if err := s.deps.Audio.RemoveTrack(r.Context(), playlist.ID, chi.URLParam(r, "fileID")); err != nil {
		writeError(w, http.StatusInternalServerError, "failed to remove track")
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"removed": true})
}
