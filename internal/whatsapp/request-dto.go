package whatsapp

// SendGroupRequest queues a message for a member group
type SendGroupRequest struct {
	GroupID  string `json:"group_id" binding:"required,max=64"`
	Message  string `json:"message" binding:"required,max=4096"`
	MemberID string `json:"member_id" binding:"omitempty,uuid"`
}
