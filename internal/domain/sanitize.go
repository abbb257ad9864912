package domain

import "time"

// PublicUser is the outward shape of a User; the password hash never appears here.
type PublicUser struct {
	ID          string  `json:"id"`
	Name        string  `json:"name"`
	Email       string  `json:"email"`
	IsAdmin     bool    `json:"isAdmin"`
	PhoneNumber *string `json:"phoneNumber,omitempty"`
}

// TechnicianSummary is the technician embedded in work order responses.
type TechnicianSummary struct {
	ID      string `json:"id"`
	Name    string `json:"name"`
	Email   string `json:"email"`
	IsAdmin bool   `json:"isAdmin"`
}

// SanitizedWorkOrder is the outward shape of a WorkOrder.
type SanitizedWorkOrder struct {
	ID              string            `json:"id"`
	BuildingName    string            `json:"buildingName"`
	EquipmentNumber string            `json:"equipmentNumber"`
	ClientName      string            `json:"clientName"`
	Description     string            `json:"description"`
	Requester       string            `json:"requester"`
	Technician      TechnicianSummary `json:"technician"`
	Status          WorkOrderStatus   `json:"status"`
	EquipmentStatus EquipmentStatus   `json:"equipmentStatus"`
	CreatedAt       time.Time         `json:"createdAt"`
	CompletedAt     *time.Time        `json:"completedAt,omitempty"`
	Observations    *string           `json:"observations,omitempty"`
}

// SanitizeUser drops credentials from u.
func SanitizeUser(u *User) PublicUser {
	return PublicUser{
		ID:          u.ID,
		Name:        u.Name,
		Email:       u.Email,
		IsAdmin:     u.IsAdmin,
		PhoneNumber: u.PhoneNumber,
	}
}

// SanitizeUsers maps SanitizeUser over users.
func SanitizeUsers(users []User) []PublicUser {
	out := make([]PublicUser, 0, len(users))
	for i := range users {
		out = append(out, SanitizeUser(&users[i]))
	}
	return out
}

// SanitizeTechnician reduces u to the fields exposed on work orders.
func SanitizeTechnician(u *User) TechnicianSummary {
	return TechnicianSummary{
		ID:      u.ID,
		Name:    u.Name,
		Email:   u.Email,
		IsAdmin: u.IsAdmin,
	}
}

// SanitizeWorkOrder projects w for responses.
func SanitizeWorkOrder(w *WorkOrder) SanitizedWorkOrder {
	return SanitizedWorkOrder{
		ID:              w.ID,
		BuildingName:    w.BuildingName,
		EquipmentNumber: w.EquipmentNumber,
		ClientName:      w.ClientName,
		Description:     w.Description,
		Requester:       w.Requester,
		Technician:      SanitizeTechnician(&w.Technician),
		Status:          w.Status,
		EquipmentStatus: w.EquipmentStatus,
		CreatedAt:       w.CreatedAt,
		CompletedAt:     w.CompletedAt,
		Observations:    w.Observations,
	}
}

// SanitizeWorkOrders maps SanitizeWorkOrder over orders.
func SanitizeWorkOrders(orders []WorkOrder) []SanitizedWorkOrder {
	out := make([]SanitizedWorkOrder, 0, len(orders))
	for i := range orders {
		out = append(out, SanitizeWorkOrder(&orders[i]))
	}
	return out
}
