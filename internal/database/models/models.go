// Package models contains the database model definitions.
// These models map directly to the SQLite database tables
// and mirror the schema the Lorelight web client was built against.
package models

import (
	"encoding/json"
	"time"

	"github.com/lorelight/lorelight-go/pkg/hueapi"
)

// User represents a registered game master.
// Table: users
type User struct {
	ID           string    `gorm:"column:id;primaryKey" json:"id"`
	Email        string    `gorm:"column:email;uniqueIndex" json:"email"`
	Name         *string   `gorm:"column:name" json:"name"`
	PasswordHash string    `gorm:"column:password_hash" json:"-"`
	CreatedAt    time.Time `gorm:"column:created_at;autoCreateTime" json:"createdAt"`
	UpdatedAt    time.Time `gorm:"column:updated_at;autoUpdateTime" json:"updatedAt"`
}

func (User) TableName() string { return "users" }

// Campaign represents a tabletop campaign. Campaigns own sessions and scenes.
// Table: campaigns
type Campaign struct {
	ID          string    `gorm:"column:id;primaryKey" json:"id"`
	UserID      string    `gorm:"column:user_id;index" json:"userId"`
	Name        string    `gorm:"column:name" json:"name"`
	Description *string   `gorm:"column:description" json:"description"`
	CreatedAt   time.Time `gorm:"column:created_at;autoCreateTime" json:"createdAt"`
	UpdatedAt   time.Time `gorm:"column:updated_at;autoUpdateTime" json:"updatedAt"`

	// Relations (loaded separately)
	Sessions []Session `gorm:"foreignKey:CampaignID" json:"sessions,omitempty"`
	Scenes   []Scene   `gorm:"foreignKey:CampaignID" json:"scenes,omitempty"`
}

func (Campaign) TableName() string { return "campaigns" }

// Session status values. A nil status means the session has not been scheduled
// into either state yet.
const (
	SessionStatusPlanning = "planning"
	SessionStatusActive   = "active"
)

// Session represents a play session within a campaign.
// At most one session per campaign has Status == "active"; the activation
// routine enforces this, not a database constraint.
// Table: sessions
type Session struct {
	ID          string     `gorm:"column:id;primaryKey" json:"id"`
	CampaignID  string     `gorm:"column:campaign_id;index" json:"campaignId"`
	Title       string     `gorm:"column:title" json:"title"`
	Date        *time.Time `gorm:"column:date" json:"date"`
	Description *string    `gorm:"column:description" json:"description"`
	Status      *string    `gorm:"column:status" json:"status"`
	CreatedAt   time.Time  `gorm:"column:created_at;autoCreateTime" json:"createdAt"`
	UpdatedAt   time.Time  `gorm:"column:updated_at;autoUpdateTime" json:"updatedAt"`
}

func (Session) TableName() string { return "sessions" }

// AudioConfig is the audio portion of a scene, stored as JSON in the
// audio_config column.
type AudioConfig struct {
	AudioID   string  `json:"audio_id"`
	Volume    float64 `json:"volume"`
	Loop      bool    `json:"loop"`
	StartTime float64 `json:"start_time,omitempty"`
}

// Scene represents a pre-configured audio + lighting combination.
// At most one scene per campaign has IsActive == true.
// Table: scenes
type Scene struct {
	ID           string     `gorm:"column:id;primaryKey" json:"id"`
	CampaignID   string     `gorm:"column:campaign_id;index" json:"campaignId"`
	Name         string     `gorm:"column:name" json:"name"`
	SceneType    string     `gorm:"column:scene_type;default:general" json:"sceneType"`
	AudioConfig  *string    `gorm:"column:audio_config" json:"audioConfig"` // JSON AudioConfig
	LightConfig  *string    `gorm:"column:light_config" json:"lightConfig"` // JSON hueapi.LightConfig
	IsActive     bool       `gorm:"column:is_active;default:false" json:"isActive"`
	OrderIndex   int        `gorm:"column:order_index;default:0" json:"orderIndex"`
	IsFavorite   bool       `gorm:"column:is_favorite;default:false" json:"isFavorite"`
	LastViewedAt *time.Time `gorm:"column:last_viewed_at" json:"lastViewedAt"`
	CreatedAt    time.Time  `gorm:"column:created_at;autoCreateTime" json:"createdAt"`
	UpdatedAt    time.Time  `gorm:"column:updated_at;autoUpdateTime" json:"updatedAt"`

	// Relations
	Blocks []SceneBlock `gorm:"foreignKey:SceneID" json:"blocks,omitempty"`
	NPCs   []SceneNPC   `gorm:"foreignKey:SceneID" json:"npcs,omitempty"`
}

func (Scene) TableName() string { return "scenes" }

// ParseAudioConfig decodes the scene's audio_config column.
// Returns nil when the scene has no audio configured.
func (s *Scene) ParseAudioConfig() (*AudioConfig, error) {
	if s.AudioConfig == nil || *s.AudioConfig == "" || *s.AudioConfig == "null" {
		return nil, nil
	}
	var cfg AudioConfig
	if err := json.Unmarshal([]byte(*s.AudioConfig), &cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// ParseLightConfig decodes the scene's light_config column.
// Returns nil when the scene has no lighting configured.
func (s *Scene) ParseLightConfig() (*hueapi.LightConfig, error) {
	if s.LightConfig == nil || *s.LightConfig == "" || *s.LightConfig == "null" {
		return nil, nil
	}
	var cfg hueapi.LightConfig
	if err := json.Unmarshal([]byte(*s.LightConfig), &cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// AudioFile represents an uploaded audio track stored in object storage.
// Table: audio_files
type AudioFile struct {
	ID         string    `gorm:"column:id;primaryKey" json:"id"`
	UserID     string    `gorm:"column:user_id;index" json:"userId"`
	FolderID   *string   `gorm:"column:folder_id;index" json:"folderId"`
	Name       string    `gorm:"column:name" json:"name"`
	FileURL    string    `gorm:"column:file_url" json:"fileUrl"`
	StorageKey string    `gorm:"column:storage_key" json:"-"`
	Duration   *float64  `gorm:"column:duration" json:"duration"` // Seconds
	FileSize   int64     `gorm:"column:file_size" json:"fileSize"`
	Format     *string   `gorm:"column:format" json:"format"`
	Tags       *string   `gorm:"column:tags;default:[]" json:"tags"` // JSON array of strings
	CreatedAt  time.Time `gorm:"column:created_at;autoCreateTime" json:"createdAt"`
	UpdatedAt  time.Time `gorm:"column:updated_at;autoUpdateTime" json:"updatedAt"`
}

func (AudioFile) TableName() string { return "audio_files" }

// AudioFolder represents a directory in the audio library tree.
// Table: audio_folders
type AudioFolder struct {
	ID        string    `gorm:"column:id;primaryKey" json:"id"`
	UserID    string    `gorm:"column:user_id;index" json:"userId"`
	ParentID  *string   `gorm:"column:parent_id;index" json:"parentId"`
	Name      string    `gorm:"column:name" json:"name"`
	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime" json:"createdAt"`
	UpdatedAt time.Time `gorm:"column:updated_at;autoUpdateTime" json:"updatedAt"`
}

func (AudioFolder) TableName() string { return "audio_folders" }

// AudioPlaylist represents a user-curated list of tracks.
// Table: audio_playlists
type AudioPlaylist struct {
	ID          string    `gorm:"column:id;primaryKey" json:"id"`
	UserID      string    `gorm:"column:user_id;index" json:"userId"`
	Name        string    `gorm:"column:name" json:"name"`
	Description *string   `gorm:"column:description" json:"description"`
	CreatedAt   time.Time `gorm:"column:created_at;autoCreateTime" json:"createdAt"`
	UpdatedAt   time.Time `gorm:"column:updated_at;autoUpdateTime" json:"updatedAt"`

	// Relations
	Tracks []PlaylistTrack `gorm:"foreignKey:PlaylistID" json:"tracks,omitempty"`
}

func (AudioPlaylist) TableName() string { return "audio_playlists" }

// PlaylistTrack is the junction between playlists and audio files.
// Table: playlist_tracks
type PlaylistTrack struct {
	ID          string    `gorm:"column:id;primaryKey" json:"id"`
	PlaylistID  string    `gorm:"column:playlist_id;index" json:"playlistId"`
	AudioFileID string    `gorm:"column:audio_file_id;index" json:"audioFileId"`
	OrderIndex  int       `gorm:"column:order_index;default:0" json:"orderIndex"`
	CreatedAt   time.Time `gorm:"column:created_at;autoCreateTime" json:"createdAt"`

	// Relations
	AudioFile *AudioFile `gorm:"foreignKey:AudioFileID" json:"audioFile,omitempty"`
}

func (PlaylistTrack) TableName() string { return "playlist_tracks" }

// LightConfig is a saved Hue preset, distinct from the inline light_config
// embedded in a scene.
// Table: light_configs
type LightConfig struct {
	ID        string    `gorm:"column:id;primaryKey" json:"id"`
	UserID    string    `gorm:"column:user_id;index" json:"userId"`
	Name      string    `gorm:"column:name" json:"name"`
	Config    string    `gorm:"column:config" json:"config"` // JSON hueapi.LightConfig
	IsActive  bool      `gorm:"column:is_active;default:false" json:"isActive"`
	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime" json:"createdAt"`
	UpdatedAt time.Time `gorm:"column:updated_at;autoUpdateTime" json:"updatedAt"`
}

func (LightConfig) TableName() string { return "light_configs" }

// ParseConfig decodes the preset's config column.
func (l *LightConfig) ParseConfig() (*hueapi.LightConfig, error) {
	if l.Config == "" || l.Config == "null" {
		return nil, nil
	}
	var cfg hueapi.LightConfig
	if err := json.Unmarshal([]byte(l.Config), &cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// SceneBlock represents an ordered rich-text content unit attached to a scene.
// Table: scene_blocks
type SceneBlock struct {
	ID         string    `gorm:"column:id;primaryKey" json:"id"`
	SceneID    string    `gorm:"column:scene_id;index" json:"sceneId"`
	BlockType  string    `gorm:"column:block_type;default:text" json:"blockType"`
	Content    string    `gorm:"column:content" json:"content"`
	OrderIndex int       `gorm:"column:order_index;default:0" json:"orderIndex"`
	Tags       *string   `gorm:"column:tags;default:[]" json:"tags"` // JSON array of strings
	CreatedAt  time.Time `gorm:"column:created_at;autoCreateTime" json:"createdAt"`
	UpdatedAt  time.Time `gorm:"column:updated_at;autoUpdateTime" json:"updatedAt"`
}

func (SceneBlock) TableName() string { return "scene_blocks" }

// SceneNPC represents an ordered NPC or enemy reference attached to a scene.
// Table: scene_npcs
type SceneNPC struct {
	ID         string    `gorm:"column:id;primaryKey" json:"id"`
	SceneID    string    `gorm:"column:scene_id;index" json:"sceneId"`
	Name       string    `gorm:"column:name" json:"name"`
	Role       *string   `gorm:"column:role" json:"role"`
	Notes      *string   `gorm:"column:notes" json:"notes"`
	OrderIndex int       `gorm:"column:order_index;default:0" json:"orderIndex"`
	CreatedAt  time.Time `gorm:"column:created_at;autoCreateTime" json:"createdAt"`
	UpdatedAt  time.Time `gorm:"column:updated_at;autoUpdateTime" json:"updatedAt"`
}

func (SceneNPC) TableName() string { return "scene_npcs" }

// Setting represents a system setting, such as the paired Hue bridge address.
// Table: settings
type Setting struct {
	ID        string    `gorm:"column:id;primaryKey" json:"id"`
	Key       string    `gorm:"column:key;uniqueIndex" json:"key"`
	Value     string    `gorm:"column:value" json:"value"`
	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime" json:"createdAt"`
	UpdatedAt time.Time `gorm:"column:updated_at;autoUpdateTime" json:"updatedAt"`
}

func (Setting) TableName() string { return "settings" }

// AllModels returns every model for auto-migration.
func AllModels() []interface{} {
	return []interface{}{
		&User{},
		&Campaign{},
		&Session{},
		&Scene{},
		&AudioFile{},
		&AudioFolder{},
		&AudioPlaylist{},
		&PlaylistTrack{},
		&LightConfig{},
		&SceneBlock{},
		&SceneNPC{},
		&Setting{},
	}
}
