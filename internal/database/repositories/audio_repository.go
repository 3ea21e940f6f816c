package repositories

import (
	"context"
	"fmt"

	"github.com/lorelight/lorelight-go/internal/database/models"
	"github.com/lucsky/cuid"
	"gorm.io/gorm"
)

// maxFolderDepth bounds parent-chain walks so a cyclic tree cannot spin.
const maxFolderDepth = 32

// AudioRepository handles audio file, folder, and playlist data access.
type AudioRepository struct {
	db *gorm.DB
}

// NewAudioRepository creates a new AudioRepository.
func NewAudioRepository(db *gorm.DB) *AudioRepository {
	return &AudioRepository{db: db}
}

// --- Files ---

// FindFilesByUserID returns all audio files owned by a user.
func (r *AudioRepository) FindFilesByUserID(ctx context.Context, userID string) ([]models.AudioFile, error) {
	var files []models.AudioFile
	result := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Find(&files)
	return files, result.Error
}

// FindFilesByFolderID returns the audio files in a folder. A nil folderID
// selects files at the library root.
func (r *AudioRepository) FindFilesByFolderID(ctx context.Context, userID string, folderID *string) ([]models.AudioFile, error) {
	var files []models.AudioFile
	query := r.db.WithContext(ctx).Where("user_id = ?", userID)
	if folderID == nil {
		query = query.Where("folder_id IS NULL")
	} else {
		query = query.Where("folder_id = ?", *folderID)
	}
	result := query.Order("name ASC").Find(&files)
	return files, result.Error
}

// FindFileByID returns an audio file by ID.
func (r *AudioRepository) FindFileByID(ctx context.Context, id string) (*models.AudioFile, error) {
	var file models.AudioFile
	result := r.db.WithContext(ctx).First(&file, "id = ?", id)
	if result.Error != nil {
		if result.Error == gorm.ErrRecordNotFound {
			return nil, nil
		}
		return nil, result.Error
	}
	return &file, nil
}

// CreateFile creates a new audio file record.
func (r *AudioRepository) CreateFile(ctx context.Context, file *models.AudioFile) error {
	if file.ID == "" {
		file.ID = cuid.New()
	}
	return r.db.WithContext(ctx).Create(file).Error
}

// UpdateFile updates an existing audio file record.
func (r *AudioRepository) UpdateFile(ctx context.Context, file *models.AudioFile) error {
	return r.db.WithContext(ctx).Save(file).Error
}

// DeleteFile deletes an audio file record and its playlist references.
func (r *AudioRepository) DeleteFile(ctx context.Context, id string) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Delete(&models.PlaylistTrack{}, "audio_file_id = ?", id).Error; err != nil {
			return err
		}
		return tx.Delete(&models.AudioFile{}, "id = ?", id).Error
	})
}

// --- Folders ---

// FindFoldersByUserID returns all folders owned by a user.
func (r *AudioRepository) FindFoldersByUserID(ctx context.Context, userID string) ([]models.AudioFolder, error) {
	var folders []models.AudioFolder
	result := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("name ASC").
		Find(&folders)
	return folders, result.Error
}

// FindFolderByID returns a folder by ID.
func (r *AudioRepository) FindFolderByID(ctx context.Context, id string) (*models.AudioFolder, error) {
	var folder models.AudioFolder
	result := r.db.WithContext(ctx).First(&folder, "id = ?", id)
	if result.Error != nil {
		if result.Error == gorm.ErrRecordNotFound {
			return nil, nil
		}
		return nil, result.Error
	}
	return &folder, nil
}

// CreateFolder creates a new folder.
func (r *AudioRepository) CreateFolder(ctx context.Context, folder *models.AudioFolder) error {
	if folder.ID == "" {
		folder.ID = cuid.New()
	}
	return r.db.WithContext(ctx).Create(folder).Error
}

// UpdateFolder updates an existing folder.
func (r *AudioRepository) UpdateFolder(ctx context.Context, folder *models.AudioFolder) error {
	return r.db.WithContext(ctx).Save(folder).Error
}

// DeleteFolder deletes a folder. Contained files move to the folder's parent,
// child folders are re-parented the same way.
func (r *AudioRepository) DeleteFolder(ctx context.Context, id string) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var folder models.AudioFolder
		if err := tx.First(&folder, "id = ?", id).Error; err != nil {
			return err
		}
		if err := tx.Model(&models.AudioFile{}).
			Where("folder_id = ?", id).
			Update("folder_id", folder.ParentID).Error; err != nil {
			return err
		}
		if err := tx.Model(&models.AudioFolder{}).
			Where("parent_id = ?", id).
			Update("parent_id", folder.ParentID).Error; err != nil {
			return err
		}
		return tx.Delete(&models.AudioFolder{}, "id = ?", id).Error
	})
}

// FolderPath reconstructs the folder's path by walking the parent chain.
func (r *AudioRepository) FolderPath(ctx context.Context, id string) ([]models.AudioFolder, error) {
	var path []models.AudioFolder
	current := &id
	for depth := 0; current != nil; depth++ {
		if depth >= maxFolderDepth {
			return nil, fmt.Errorf("folder tree too deep or cyclic at %s", *current)
		}
		folder, err := r.FindFolderByID(ctx, *current)
		if err != nil {
			return nil, err
		}
		if folder == nil {
			break
		}
		path = append([]models.AudioFolder{*folder}, path...)
		current = folder.ParentID
	}
	return path, nil
}

// --- Playlists ---

// FindPlaylistsByUserID returns all playlists owned by a user.
func (r *AudioRepository) FindPlaylistsByUserID(ctx context.Context, userID string) ([]models.AudioPlaylist, error) {
	var playlists []models.AudioPlaylist
	result := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Find(&playlists)
	return playlists, result.Error
}

// FindPlaylistByID returns a playlist with its tracks ordered.
func (r *AudioRepository) FindPlaylistByID(ctx context.Context, id string) (*models.AudioPlaylist, error) {
	var playlist models.AudioPlaylist
	result := r.db.WithContext(ctx).
		Preload("Tracks", func(db *gorm.DB) *gorm.DB {
			return db.Order("order_index ASC")
		}).
		Preload("Tracks.AudioFile").
		First(&playlist, "id = ?", id)
	if result.Error != nil {
		if result.Error == gorm.ErrRecordNotFound {
			return nil, nil
		}
		return nil, result.Error
	}
	return &playlist, nil
}

// CreatePlaylist creates a new playlist.
func (r *AudioRepository) CreatePlaylist(ctx context.Context, playlist *models.AudioPlaylist) error {
	if playlist.ID == "" {
		playlist.ID = cuid.New()
	}
	return r.db.WithContext(ctx).Create(playlist).Error
}

// UpdatePlaylist updates an existing playlist.
func (r *AudioRepository) UpdatePlaylist(ctx context.Context, playlist *models.AudioPlaylist) error {
	return r.db.WithContext(ctx).Save(playlist).Error
}

// DeletePlaylist deletes a playlist and its track references.
func (r *AudioRepository) DeletePlaylist(ctx context.Context, id string) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Delete(&models.PlaylistTrack{}, "playlist_id = ?", id).Error; err != nil {
			return err
		}
		return tx.Delete(&models.AudioPlaylist{}, "id = ?", id).Error
	})
}

// AddTrack appends an audio file to a playlist.
func (r *AudioRepository) AddTrack(ctx context.Context, playlistID, audioFileID string) (*models.PlaylistTrack, error) {
	var count int64
	if err := r.db.WithContext(ctx).
		Model(&models.PlaylistTrack{}).
		Where("playlist_id = ?", playlistID).
		Count(&count).Error; err != nil {
		return nil, err
	}
	track := models.PlaylistTrack{
		ID:          cuid.New(),
		PlaylistID:  playlistID,
		AudioFileID: audioFileID,
		OrderIndex:  int(count),
	}
	if err := r.db.WithContext(ctx).Create(&track).Error; err != nil {
		return nil, err
	}
	return &track, nil
}

// RemoveTrack removes an audio file from a playlist.
func (r *AudioRepository) RemoveTrack(ctx context.Context, playlistID, audioFileID string) error {
	return r.db.WithContext(ctx).
		Delete(&models.PlaylistTrack{}, "playlist_id = ? AND audio_file_id = ?", playlistID, audioFileID).Error
}
