package guardian

type CreateParentRequest struct {
	Name  string `json:"name" binding:"required"`
	Email string `json:"email" binding:"required,email"`
}

type ParentResponse struct {
	ParentID string `json:"parent_id"`
	Name     string `json:"name"`
	Email    string `json:"email"`
}

type AssignStudentRequest struct {
	StudentID string `json:"student_id" binding:"required"`
}

func (p Parent) toDTO() ParentResponse {
	return ParentResponse{ParentID: p.ParentID, Name: p.Name, Email: p.Email}
}
