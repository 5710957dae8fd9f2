package handler

import (
	"github.com/reqforge/requirements-api/internal/core/domain"
	"github.com/reqforge/requirements-api/internal/core/ports"
)

// --- Request → Service input ---

func toCreateDocumentInput(req createDocumentRequest) ports.CreateDocumentInput {
	return ports.CreateDocumentInput{
		DocumentID:       req.DocumentID,
		OriginalFileName: req.OriginalFileName,
		StoredFilePath:   req.StoredFilePath,
		FileType:         req.FileType,
		AgentOutputID:    req.AgentOutputID,
		Status:           req.Status,
		FinalJSONPath:    req.FinalJSONPath,
		FinalDocxPath:    req.FinalDocxPath,
		VersionHistory:   req.VersionHistory,
	}
}

func toCreateAgentOutputInput(req createAgentOutputRequest) ports.CreateAgentOutputInput {
	return ports.CreateAgentOutputInput{
		AgentOutputID:         req.AgentOutputID,
		DocumentID:            req.DocumentID,
		AgentType:             req.AgentType,
		ExtractedRequirements: req.ExtractedRequirements,
	}
}

func toCreateRequirementInput(req createRequirementRequest) ports.CreateRequirementInput {
	return ports.CreateRequirementInput{
		RequirementID: req.RequirementID,
		Source:        req.Source,
		Type:          req.Type,
		Description:   req.Description,
		Category:      req.Category,
		Priority:      req.Priority,
		Tags:          req.Tags,
		IsDuplicate:   req.IsDuplicate,
		Notes:         req.Notes,
	}
}

// --- Domain → Response ---

func toAccountResponse(a *domain.Account) accountResponse {
	return accountResponse{
		ID:        a.ID,
		Username:  a.Username,
		Email:     a.Email,
		Role:      a.Role,
		CreatedAt: a.CreatedAt,
		UpdatedAt: a.UpdatedAt,
	}
}

func toAccountResponses(accounts []*domain.Account) []accountResponse {
	out := make([]accountResponse, 0, len(accounts))
	for _, a := range accounts {
		out = append(out, toAccountResponse(a))
	}
	return out
}
