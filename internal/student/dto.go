package student

import "encoding/json"

// 端末の確認ダイアログ用。次操作（login/logout）までここで返す。
type KioskStudentResponse struct {
	StudentNumber string `json:"student_number"`
	Name          string `json:"name"`
	NextAction    string `json:"next_action"`
}

type CreateAttendanceRequest struct {
	StudentNumber string `json:"student_number" binding:"required"`
	Status        string `json:"status" binding:"required"` // "login" / "logout"
}

type AttendanceResponse struct {
	StudentNumber string `json:"student_number"`
	StudentName   string `json:"student_name"`
	Status        string `json:"status"`
	Timestamp     string `json:"timestamp"`
}

type CreateStudentRequest struct {
	StudentNumber string          `json:"student_number" binding:"required"`
	Name          string          `json:"name" binding:"required"`
	Profile       json.RawMessage `json:"profile,omitempty"`
}

type StudentResponse struct {
	StudentID     string          `json:"student_id"`
	StudentNumber string          `json:"student_number"`
	Name          string          `json:"name"`
	Profile       json.RawMessage `json:"profile,omitempty"`
	RecordCount   int             `json:"record_count"`
}

func (s Student) toDTO() StudentResponse {
	return StudentResponse{
		StudentID:     s.StudentID,
		StudentNumber: s.Number,
		Name:          s.Name,
		Profile:       s.Profile,
		RecordCount:   len(s.Ledger),
	}
}
