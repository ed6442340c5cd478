package response

type TotalPointsResponse struct {
	StudentID   uint `json:"student_id"`
	TotalPoints int  `json:"total_points"`
}
