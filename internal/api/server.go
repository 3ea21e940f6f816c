// Package api exposes the REST and websocket surface of the server.
package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/lorelight/lorelight-go/internal/auth"
	"github.com/lorelight/lorelight-go/internal/database/repositories"
	"github.com/lorelight/lorelight-go/internal/metrics"
	"github.com/lorelight/lorelight-go/internal/services/ambience"
	"github.com/lorelight/lorelight-go/internal/services/export"
	"github.com/lorelight/lorelight-go/internal/services/hue"
	importservice "github.com/lorelight/lorelight-go/internal/services/import"
	"github.com/lorelight/lorelight-go/internal/services/playback"
	"github.com/lorelight/lorelight-go/internal/services/pubsub"
	"github.com/lorelight/lorelight-go/internal/services/scene"
	"github.com/lorelight/lorelight-go/internal/storage"
	"github.com/lorelight/lorelight-go/internal/store"
)

// Deps are the collaborators the API layer routes requests to.
type Deps struct {
	Auth         *auth.Service
	Users        *repositories.UserRepository
	Campaigns    *repositories.CampaignRepository
	Sessions     *repositories.SessionRepository
	Scenes       *repositories.SceneRepository
	Audio        *repositories.AudioRepository
	LightConfigs *repositories.LightConfigRepository
	SceneBlocks  *repositories.SceneBlockRepository

	// In-memory mirrors kept consistent through the optimistic mutation
	// protocol; a failed write rolls the mirror back to its snapshot.
	CampaignStore  *store.CampaignStore
	SessionStore   *store.SessionStore
	AudioFileStore *store.AudioFileStore

	Hue          *hue.Service
	Playback     *playback.Service
	Orchestrator *scene.Orchestrator
	Ambience     *ambience.Service
	Export       *export.Service
	Import       *importservice.Service

	// Uploader is nil when object storage is not configured; upload
	// endpoints then return 503.
	Uploader *storage.Uploader

	PubSub  *pubsub.PubSub
	Metrics *metrics.Metrics

	Version string
}

// Server handles HTTP requests.
type Server struct {
	deps Deps
}

// NewServer creates the API server.
func NewServer(deps Deps) *Server {
	return &Server{deps: deps}
}

// Routes mounts every endpoint on the given router. Everything under /api
// except register/login requires a bearer token.
func (s *Server) Routes(router chi.Router) {
	router.Get("/health", s.handleHealth)
	router.Method(http.MethodGet, "/metrics", s.deps.Metrics.Handler())
	router.Get("/ws", s.handleWebSocket)

	router.Route("/api", func(r chi.Router) {
		r.Post("/auth/register", s.handleRegister)
		r.Post("/auth/login", s.handleLogin)

		r.Group(func(r chi.Router) {
			r.Use(s.requireAuth)

			r.Get("/auth/me", s.handleMe)

			r.Route("/campaigns", func(r chi.Router) {
				r.Get("/", s.handleListCampaigns)
				r.Post("/", s.handleCreateCampaign)
				r.Get("/{campaignID}", s.handleGetCampaign)
				r.Put("/{campaignID}", s.handleUpdateCampaign)
				r.Delete("/{campaignID}", s.handleDeleteCampaign)
				r.Get("/{campaignID}/sessions", s.handleListSessions)
				r.Get("/{campaignID}/scenes", s.handleListScenes)
				r.Get("/{campaignID}/export", s.handleExportCampaign)
				r.Post("/import", s.handleImportCampaign)
			})

			r.Route("/sessions", func(r chi.Router) {
				r.Post("/", s.handleCreateSession)
				r.Get("/{sessionID}", s.handleGetSession)
				r.Put("/{sessionID}", s.handleUpdateSession)
				r.Delete("/{sessionID}", s.handleDeleteSession)
				r.Post("/{sessionID}/activate", s.handleActivateSession)
			})

			r.Route("/scenes", func(r chi.Router) {
				r.Post("/", s.handleCreateScene)
				r.Post("/reorder", s.handleReorderScenes)
				r.Get("/{sceneID}", s.handleGetScene)
				r.Put("/{sceneID}", s.handleUpdateScene)
				r.Delete("/{sceneID}", s.handleDeleteScene)
				r.Post("/{sceneID}/activate", s.handleActivateScene)
				r.Post("/{sceneID}/deactivate", s.handleDeactivateScene)
				r.Post("/{sceneID}/favorite", s.handleFavoriteScene)

				r.Get("/{sceneID}/blocks", s.handleListBlocks)
				r.Post("/{sceneID}/blocks", s.handleCreateBlock)
				r.Get("/{sceneID}/npcs", s.handleListNPCs)
				r.Post("/{sceneID}/npcs", s.handleCreateNPC)
			})

			r.Route("/blocks", func(r chi.Router) {
				r.Post("/reorder", s.handleReorderBlocks)
				r.Put("/{blockID}", s.handleUpdateBlock)
				r.Delete("/{blockID}", s.handleDeleteBlock)
			})

			r.Route("/npcs", func(r chi.Router) {
				r.Put("/{npcID}", s.handleUpdateNPC)
				r.Delete("/{npcID}", s.handleDeleteNPC)
			})

			r.Route("/audio", func(r chi.Router) {
				r.Get("/files", s.handleListAudioFiles)
				r.Post("/files", s.handleUploadAudioFile)
				r.Get("/files/{fileID}", s.handleGetAudioFile)
				r.Put("/files/{fileID}", s.handleUpdateAudioFile)
				r.Delete("/files/{fileID}", s.handleDeleteAudioFile)

				r.Get("/folders", s.handleListAudioFolders)
				r.Post("/folders", s.handleCreateAudioFolder)
				r.Get("/folders/{folderID}/path", s.handleAudioFolderPath)
				r.Put("/folders/{folderID}", s.handleUpdateAudioFolder)
				r.Delete("/folders/{folderID}", s.handleDeleteAudioFolder)

				r.Get("/playlists", s.handleListPlaylists)
				r.Post("/playlists", s.handleCreatePlaylist)
				r.Get("/playlists/{playlistID}", s.handleGetPlaylist)
				r.Put("/playlists/{playlistID}", s.handleUpdatePlaylist)
				r.Delete("/playlists/{playlistID}", s.handleDeletePlaylist)
				r.Post("/playlists/{playlistID}/tracks", s.handleAddPlaylistTrack)
				r.Delete("/playlists/{playlistID}/tracks/{fileID}", s.handleRemovePlaylistTrack)
			})

			r.Route("/light-configs", func(r chi.Router) {
				r.Get("/", s.handleListLightConfigs)
				r.Post("/", s.handleCreateLightConfig)
				r.Get("/{configID}", s.handleGetLightConfig)
				r.Put("/{configID}", s.handleUpdateLightConfig)
				r.Delete("/{configID}", s.handleDeleteLightConfig)
				r.Post("/{configID}/apply", s.handleApplyLightConfig)
				r.Post("/clear", s.handleClearLightConfig)
			})

			r.Route("/hue", func(r chi.Router) {
				r.Get("/discover", s.handleHueDiscover)
				r.Post("/pair", s.handleHuePair)
				r.Get("/status", s.handleHueStatus)
				r.Post("/disconnect", s.handleHueDisconnect)
				r.Put("/lights/{lightID}", s.handleHueLightState)
				r.Put("/groups/{groupID}", s.handleHueGroupState)
			})

			r.Route("/playback", func(r chi.Router) {
				r.Get("/state", s.handlePlaybackState)
				r.Post("/load", s.handlePlaybackLoad)
				r.Post("/play", s.handlePlaybackPlay)
				r.Post("/pause", s.handlePlaybackPause)
				r.Post("/toggle", s.handlePlaybackToggle)
				r.Post("/stop", s.handlePlaybackStop)
				r.Post("/volume", s.handlePlaybackVolume)
				r.Post("/mute", s.handlePlaybackMute)
				r.Post("/loop", s.handlePlaybackLoop)
				r.Post("/seek", s.handlePlaybackSeek)
				r.Post("/progress", s.handlePlaybackProgress)
				r.Post("/ended", s.handlePlaybackEnded)
				r.Post("/error", s.handlePlaybackError)
			})

			r.Get("/gradient", s.handleGradient)
		})
	})
}
