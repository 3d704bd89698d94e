package categories

// CreateCategoryRequest is the body of POST /categories
type CreateCategoryRequest struct {
	Name  string `json:"name" binding:"required,notblank,max=50"`
	Color string `json:"color" binding:"omitempty,hexcolor"`
	Icon  string `json:"icon" binding:"omitempty,max=50"`
}
