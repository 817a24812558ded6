package models

type MatchRunRequest struct {
	JobID        string   `json:"job_id" validate:"required,uuid"`
	CandidateIDs []string `json:"candidate_ids,omitempty"`
	MinScore     *float64 `json:"min_score,omitempty"`
}

type MatchRunResponse struct {
	Results          []MatchResult `json:"results"`
	UsedSemanticPath bool          `json:"used_semantic_path"`
	Count            int           `json:"count"`
}

type FeedbackRequest struct {
	MatchResultID string  `json:"match_result_id" validate:"required,uuid"`
	FeedbackType  string  `json:"feedback_type" validate:"required"`
	FeedbackBy    string  `json:"feedback_by" validate:"required"`
	Notes         *string `json:"notes,omitempty"`
}

type FeedbackResponse struct {
	Multiplier   float64 `json:"multiplier"`
	OverallScore float64 `json:"overall_score"`
}

type BatchItemRequest struct {
	JobID        string   `json:"job_id" validate:"required,uuid"`
	CandidateIDs []string `json:"candidate_ids,omitempty"`
}

type BatchStartRequest struct {
	Items     []BatchItemRequest `json:"items" validate:"required"`
	Threshold float64            `json:"threshold"`
}

type BatchStartResponse struct {
	QueueID    string `json:"queue_id"`
	TotalItems int    `json:"total_items"`
}

type BatchProgressResponse struct {
	Status         string `json:"status"`
	TotalItems     int    `json:"total_items"`
	Processed      int    `json:"processed"`
	Succeeded      int    `json:"succeeded"`
	ReviewRequired int    `json:"review_required"`
	Failed         int    `json:"failed"`
	CurrentItem    string `json:"current_item"`
}

type EmbeddingRefreshRequest struct {
	EntityType string `json:"entity_type" validate:"required"`
	EntityID   string `json:"entity_id" validate:"required,uuid"`
}
