package api

const (
	postCategoryMaxSize = 16 * 1024 // 16 KiB

	headerIdempotencyKey = "Idempotency-Key"
	categoriesScope      = "categories"

	msgFetchCategoriesFailed = "Failed to fetch categories"
	msgCreateCategoryFailed  = "Failed to create category"
	msgCategoryNameRequired  = "Category name is required"
	msgInvalidBody           = "invalid body"
	msgDuplicateRequest      = "duplicate request"
)

// POST /api/categories request body
type createCategoryRequest struct {
	Name string `json:"name"`
}

type errorResponse struct {
	Error string `json:"error"`
}

type healthResponse struct {
	Status string `json:"status"`
}
