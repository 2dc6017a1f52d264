package handlers

import "dorm-delivery/internal/domain"

func (r createTaskRequest) toModel() domain.NewTask {
	return domain.NewTask{
		Title:           r.Title,
		Description:     r.Description,
		Type:            domain.TaskType(r.TaskType),
		PickupLocation:  r.PickupLocation,
		DropoffLocation: r.DropoffLocation,
		Amount:          domain.MoneyFromUnits(r.Amount),
	}
}

func taskToResponse(t domain.Task) taskDTO {
	return taskDTO{
		ID:               t.ID,
		Title:            t.Title,
		Description:      t.Description,
		TaskType:         string(t.Type),
		PickupLocation:   t.PickupLocation,
		DropoffLocation:  t.DropoffLocation,
		Amount:           t.Amount.Units(),
		Status:           string(t.Status),
		PaymentStatus:    string(t.PaymentStatus),
		HeldAmount:       t.HeldAmount.Units(),
		PaymentReference: t.PaymentReference,
		CustomerID:       t.CustomerID,
		AssignedTo:       t.AssignedTo,
		CreatedAt:        t.CreatedAt,
		UpdatedAt:        t.UpdatedAt,
		Version:          t.Version,
	}
}

func tasksToResponse(list []domain.Task) []taskDTO {
	out := make([]taskDTO, 0, len(list))
	for _, t := range list {
		out = append(out, taskToResponse(t))
	}
	return out
}

func statsToResponse(s domain.Stats) statsDTO {
	return statsDTO{
		Users:        s.Users,
		TotalTasks:   s.Total,
		ActiveTasks:  s.Active,
		PendingTasks: s.Pending,
		InProgress:   s.InProgress,
		HeldPayments: s.HeldPayments,
		HeldAmount:   s.HeldAmount.Units(),
	}
}

func userToResponse(u domain.User) userDTO {
	return userDTO{ID: u.ID, Name: u.Name, Email: u.Email, Role: string(u.Role), Rating: u.Rating}
}
