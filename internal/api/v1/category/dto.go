package category

type CreateCategoryRequest struct {
	Name     string `json:"name" binding:"required,min=1,max=100"`
	ParentID *uint  `json:"parent_id"`
}

type UpdateCategoryRequest struct {
	Name     *string `json:"name"`
	ParentID *uint   `json:"parent_id"`
}
