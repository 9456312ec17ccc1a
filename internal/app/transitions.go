package app

import "hotel_desk/internal/domain"

// RoomAction is a housekeeping/front-desk status change other than check-in.
type RoomAction string

const (
	ActionCheckOut       RoomAction = "check-out"
	ActionClean          RoomAction = "clean"
	ActionFinishCleaning RoomAction = "finish-cleaning"
	ActionMaintenance    RoomAction = "maintenance"
	ActionOutOfService   RoomAction = "out-of-service"
	ActionRestore        RoomAction = "restore"
	ActionReserve        RoomAction = "reserve"
	ActionRelease        RoomAction = "release"
)

type transition struct {
	to   domain.RoomStatus
	from []domain.RoomStatus
}

var transitionMap = map[RoomAction]transition{
	ActionCheckOut:       {domain.RoomCheckedOut, []domain.RoomStatus{domain.RoomOccupied, domain.RoomCheckedIn}},
	ActionClean:          {domain.RoomCleaning, []domain.RoomStatus{domain.RoomCheckedOut, domain.RoomAvailable}},
	ActionFinishCleaning: {domain.RoomAvailable, []domain.RoomStatus{domain.RoomCleaning}},
	ActionMaintenance:    {domain.RoomMaintenance, []domain.RoomStatus{domain.RoomAvailable, domain.RoomCleaning, domain.RoomCheckedOut}},
	ActionOutOfService:   {domain.RoomOutOfService, []domain.RoomStatus{domain.RoomAvailable, domain.RoomMaintenance}},
	ActionRestore:        {domain.RoomAvailable, []domain.RoomStatus{domain.RoomMaintenance, domain.RoomOutOfService}},
	ActionReserve:        {domain.RoomReserved, []domain.RoomStatus{domain.RoomAvailable}},
	ActionRelease:        {domain.RoomAvailable, []domain.RoomStatus{domain.RoomReserved, domain.RoomBooked}},
}

// NextStatus returns the status action leads to from, false when the action
// is unknown or not allowed from that status.
func NextStatus(action RoomAction, from domain.RoomStatus) (domain.RoomStatus, bool) {
	t, ok := transitionMap[action]
	if !ok {
		return "", false
	}
	for _, s := range t.from {
		if s == from {
			return t.to, true
		}
	}
	return "", false
}
