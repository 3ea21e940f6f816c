package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/lorelight/lorelight-go/internal/database/models"
)

type blockRequest struct {
	SceneID    string  `json:"sceneId"`
	BlockType  *string `json:"blockType"`
	Content    *string `json:"content"`
	OrderIndex *int    `json:"orderIndex"`
	Tags       *string `json:"tags"`
}

type npcRequest struct {
	SceneID    string  `json:"sceneId"`
	Name       string  `json:"name"`
	Role       *string `json:"role"`
	Notes      *string `json:"notes"`
	OrderIndex *int    `json:"orderIndex"`
}

func (s *Server) handleListBlocks(w http.ResponseWriter, r *http.Request) {
	record := s.loadOwnScene(w, r, chi.URLParam(r, "sceneID"))
	if record == nil {
		return
	}
	blocks, err := s.deps.SceneBlocks.FindBlocksBySceneID(r.Context(), record.ID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to list blocks")
		return
	}
	writeJSON(w, http.StatusOK, blocks)
}

func (s *Server) handleCreateBlock(w http.ResponseWriter, r *http.Request) {
	record := s.loadOwnScene(w, r, chi.URLParam(r, "sceneID"))
	if record == nil {
		return
	}

	var req blockRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	block := &models.SceneBlock{SceneID: record.ID}
	if req.BlockType != nil {
		block.BlockType = *req.BlockType
	}
	if req.Content != nil {
		block.Content = *req.Content
	}
	if req.OrderIndex != nil {
		block.OrderIndex = *req.OrderIndex
	}
	if req.Tags != nil {
		block.Tags = req.Tags
	}

	if err := s.deps.SceneBlocks.CreateBlock(r.Context(), block); err != nil {
		writeError(w, http.StatusInternalServerError, "failed to create block")
		return
	}
	writeJSON(w, http.StatusCreated, block)
}

// loadOwnBlock walks block to scene to campaign to verify ownership.
func (s *Server) loadOwnBlock(w http.ResponseWriter, r *http.Request, id string) *models.SceneBlock {
	block, err := s.deps.SceneBlocks.FindBlockByID(r.Context(), id)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to load block")
		return nil
	}
	if block == nil {
		writeError(w, http.StatusNotFound, "block not found")
		return nil
	}
	if s.loadOwnScene(w, r, block.SceneID) == nil {
		return nil
	}
	return block
}

func (s *Server) handleUpdateBlock(w http.ResponseWriter, r *http.Request) {
	block := s.loadOwnBlock(w, r, chi.URLParam(r, "blockID"))
	if block == nil {
		return
	}

	var req blockRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if req.BlockType != nil {
		block.BlockType = *req.BlockType
	}
	if req.Content != nil {
		block.Content = *req.Content
	}
	if req.OrderIndex != nil {
		block.OrderIndex = *req.OrderIndex
	}
	if req.Tags != nil {
		block.Tags = req.Tags
	}

	if err := s.deps.SceneBlocks.UpdateBlock(r.Context(), block); err != nil {
		writeError(w, http.StatusInternalServerError, "failed to update block")
		return
	}
	writeJSON(w, http.StatusOK, block)
}

func (s *Server) handleDeleteBlock(w http.ResponseWriter, r *http.Request) {
	block := s.loadOwnBlock(w, r, chi.URLParam(r, "blockID"))
	if block == nil {
		return
	}
	if err := s.deps.SceneBlocks.DeleteBlock(r.Context(), block.ID); err != nil {
		writeError(w, http.StatusInternalServerError, "failed to delete block")
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"deleted": true})
}

func (s *Server) handleReorderBlocks(w http.ResponseWriter, r *http.Request) {
	var req struct {
		BlockIDs []string `json:"blockIds"`
	}
	if !decodeJSON(w, r, &req) {
		return
	}
	if len(req.BlockIDs) == 0 {
		writeError(w, http.StatusBadRequest, "blockIds is required")
		return
	}

	// Every submitted block must belong to the caller before any index moves.
	for _, id := range req.BlockIDs {
		if s.loadOwnBlock(w, r, id) == nil {
			return
		}
	}

	if err := s.deps.SceneBlocks.ReorderBlocks(r.Context(), req.BlockIDs); err != nil {
		writeError(w, http.StatusInternalServerError, "failed to reorder blocks")
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"reordered": true})
}

func (s *Server) handleListNPCs(w http.ResponseWriter, r *http.Request) {
	record := s.loadOwnScene(w, r, chi.URLParam(r, "sceneID"))
	if record == nil {
		return
	}
	npcs, err := s.deps.SceneBlocks.FindNPCsBySceneID(r.Context(), record.ID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to list npcs")
		return
	}
	writeJSON(w, http.StatusOK, npcs)
}

func (s *Server) handleCreateNPC(w http.ResponseWriter, r *http.Request) {
	record := s.loadOwnScene(w, r, chi.URLParam(r, "sceneID"))
	if record == nil {
		return
	}

	var req npcRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if req.Name == "" {
		writeError(w, http.StatusBadRequest, "name is required")
		return
	}

	npc := &models.SceneNPC{
		SceneID: record.ID,
		Name:    req.Name,
		Role:    req.Role,
		Notes:   req.Notes,
	}
	if req.OrderIndex != nil {
		npc.OrderIndex = *req.OrderIndex
	}

	if err := s.deps.SceneBlocks.CreateNPC(r.Context(), npc); err != nil {
		writeError(w, http.StatusInternalServerError, "failed to create npc")
		return
	}
	writeJSON(w, http.StatusCreated, npc)
}

func (s *Server) loadOwnNPC(w http.ResponseWriter, r *http.Request, id string) *models.SceneNPC {
	npc, err := s.deps.SceneBlocks.FindNPCByID(r.Context(), id)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to load npc")
		return nil
	}
	if npc == nil {
		writeError(w, http.StatusNotFound, "npc not found")
		return nil
	}
	if s.loadOwnScene(w, r, npc.SceneID) == nil {
		return nil
	}
	return npc
}

func (s *Server) handleUpdateNPC(w http.ResponseWriter, r *http.Request) {
	npc := s.loadOwnNPC(w, r, chi.URLParam(r, "npcID"))
	if npc == nil {
		return
	}

	var req npcRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if req.Name != "" {
		npc.Name = req.Name
	}
	if req.Role != nil {
		npc.Role = req.Role
	}
	if req.Notes != nil {
		npc.Notes = req.Notes
	}
	if req.OrderIndex != nil {
		npc.OrderIndex = *req.OrderIndex
	}

	if err := s.deps.SceneBlocks.UpdateNPC(r.Context(), npc); err != nil {
		writeError(w, http.StatusInternalServerError, "failed to update npc")
		return
	}
	writeJSON(w, http.StatusOK, npc)
}

func (s *Server) handleDeleteNPC(w http.ResponseWriter, r *http.Request) {
	npc := s.loadOwnNPC(w, r, chi.URLParam(r, "npcID"))
	if npc == nil {
		return
	}
	if err := s.deps.SceneBlocks.DeleteNPC(r.Context(), npc.ID); err != nil {
		writeError(w, http.StatusInternalServerError, "failed to delete npc")
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"deleted": true})
}
