package issues

type CreateIssueRequest struct {
	Type        string `json:"type" binding:"required,notblank,max=64"`
	Description string `json:"description" binding:"required,notblank,max=4000"`
}

type CreateIssueResponse struct {
	Message string `json:"message"`
	Data    Issue  `json:"data"`
}
