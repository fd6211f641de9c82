package relayhandler

type HealthResponse struct {
	Status string `json:"status" example:"ok"`
} // @name HealthResponse

type ErrorResponse struct {
	Error string `json:"error"`
} // @name ErrorResponse

type ListMessagesQuery struct {
	Limit int `form:"limit,default=50" binding:"gte=0,lte=500"`
} // @name ListMessagesQuery
