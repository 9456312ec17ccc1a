package app

import (
	"context"
	"errors"
	"sync"

	"github.com/rs/zerolog/log"

	"hotel_desk/internal/adapters/observability"
	"hotel_desk/internal/domain"
)

// Store operations; also used as the "op" label on store error metrics.
const (
	opRoomsList      = "rooms.list"
	opRoomCreate     = "rooms.create"
	opRoomUpdate     = "rooms.update"
	opRoomDelete     = "rooms.delete"
	opRoomCheckIn    = "rooms.check_in"
	opRoomWalkIn     = "rooms.walk_in"
	opRoomStatus     = "rooms.status"
	opCategoriesList = "categories.list"
	opCategoryCreate = "categories.create"
	opCategoryUpdate = "categories.update"
	opCategoryDelete = "categories.delete"
	opBookingsList   = "bookings.list"
	opBookingCreate  = "bookings.create"
	opBookingGet     = "bookings.get"
	opBookingSearch  = "bookings.search"
	opBookingUpdate  = "bookings.update"
	opInventoryList  = "inventory.list"
	opItemCreate     = "inventory.create"
	opItemUpdate     = "inventory.update"
	opItemDelete     = "inventory.delete"
	opChecksList     = "checks.list"
	opCheckGet       = "checks.get"
	opCheckCreate    = "checks.create"
	opCheckUpdate    = "checks.update"
	opCheckDelete    = "checks.delete"
	opCheckBalance   = "checks.balance"
	opDraftSave      = "checks.draft"
	opBoardLoad      = "board.load"
	opHotelsList     = "hotels.list"
	opHotelCreate    = "hotels.create"
)

// SessionExpiredMessage is shown whenever the dashboard must sign in again.
const SessionExpiredMessage = "Phiên đăng nhập đã hết hạn. Vui lòng đăng nhập lại."

var failureMessages = map[string]string{
	opHotelsList:     "Không thể tải danh sách khách sạn",
	opHotelCreate:    "Tạo khách sạn thất bại",
	opRoomsList:      "Không thể tải danh sách phòng",
	opRoomCreate:     "Tạo phòng thất bại",
	opRoomUpdate:     "Cập nhật phòng thất bại",
	opRoomDelete:     "Xóa phòng thất bại",
	opRoomCheckIn:    "Nhận phòng thất bại",
	opRoomWalkIn:     "Nhận phòng thất bại",
	opRoomStatus:     "Cập nhật trạng thái phòng thất bại",
	opCategoriesList: "Không thể tải danh sách loại phòng",
	opCategoryCreate: "Tạo loại phòng thất bại",
	opCategoryUpdate: "Cập nhật loại phòng thất bại",
	opCategoryDelete: "Xóa loại phòng thất bại",
	opBookingsList:   "Không thể tải danh sách đặt phòng",
	opBookingCreate:  "Đặt phòng thất bại",
	opBookingGet:     "Không thể tải thông tin đặt phòng",
	opBookingSearch:  "Tìm kiếm đặt phòng thất bại",
	opBookingUpdate:  "Cập nhật đặt phòng thất bại",
	opInventoryList:  "Không thể tải danh sách hàng hóa",
	opItemCreate:     "Tạo hàng hóa thất bại",
	opItemUpdate:     "Cập nhật hàng hóa thất bại",
	opItemDelete:     "Xóa hàng hóa thất bại",
	opChecksList:     "Không thể tải danh sách phiếu kiểm kho",
	opCheckGet:       "Không thể tải phiếu kiểm kho",
	opCheckCreate:    "Tạo phiếu kiểm kho thất bại",
	opCheckUpdate:    "Cập nhật phiếu kiểm kho thất bại",
	opCheckDelete:    "Xóa phiếu kiểm kho thất bại",
	opCheckBalance:   "Cân bằng kho thất bại",
	opDraftSave:      "Lưu phiếu tạm thất bại",
	opBoardLoad:      "Không thể tải sơ đồ phòng",
}

var successMessages = map[string]string{
	opHotelCreate:    "Tạo khách sạn thành công",
	opRoomCreate:     "Tạo phòng thành công",
	opRoomUpdate:     "Cập nhật phòng thành công",
	opRoomDelete:     "Xóa phòng thành công",
	opRoomCheckIn:    "Nhận phòng thành công",
	opRoomWalkIn:     "Nhận phòng thành công",
	opRoomStatus:     "Cập nhật trạng thái phòng thành công",
	opCategoryCreate: "Tạo loại phòng thành công",
	opCategoryUpdate: "Cập nhật loại phòng thành công",
	opCategoryDelete: "Xóa loại phòng thành công",
	opBookingCreate:  "Đặt phòng thành công",
	opBookingUpdate:  "Cập nhật đặt phòng thành công",
	opItemCreate:     "Tạo hàng hóa thành công",
	opItemUpdate:     "Cập nhật hàng hóa thành công",
	opItemDelete:     "Xóa hàng hóa thành công",
	opCheckCreate:    "Tạo phiếu kiểm kho thành công",
	opCheckUpdate:    "Cập nhật phiếu kiểm kho thành công",
	opCheckDelete:    "Xóa phiếu kiểm kho thành công",
	opCheckBalance:   "Cân bằng kho thành công",
}

func fallbackMessage(op string) string {
	if m, ok := failureMessages[op]; ok {
		return m
	}
	return "Đã xảy ra lỗi"
}

// classify maps err onto the three user-facing classes: connection failures
// get the fixed connection message, API errors keep the API's message, and
// everything else gets op's fallback message.
func classify(op string, err error) error {
	if err == nil {
		return nil
	}
	var ve *domain.ValidationError
	if errors.As(err, &ve) {
		return ve
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, domain.ErrSuperseded) {
		return err
	}
	if errors.Is(err, domain.ErrUnauthenticated) {
		return &domain.Error{Kind: domain.KindUnauthorized, Op: op, Status: 401, Message: SessionExpiredMessage, Err: err}
	}

	var de *domain.Error
	if !errors.As(err, &de) {
		return &domain.Error{Kind: domain.KindGeneric, Op: op, Message: fallbackMessage(op), Err: err}
	}
	out := *de
	out.Op = op
	out.Err = de
	switch de.Kind {
	case domain.KindConnection:
		out.Message = domain.ConnectionMessage
	case domain.KindUnauthorized:
		out.Message = SessionExpiredMessage
	case domain.KindAPI:
		if out.Message == "" {
			out.Message = fallbackMessage(op)
		}
	default:
		out.Kind = domain.KindGeneric
		out.Message = fallbackMessage(op)
	}
	return &out
}

// errState is the store-level error field shared by every store, plus the
// toast and metric side effects of setting it. Errors are kept per hotel;
// actions not tied to a hotel are kept under "".
type errState struct {
	notifier domain.Notifier

	mu   sync.RWMutex
	last map[string]error
}

func newErrState(n domain.Notifier) errState {
	if n == nil {
		n = discard{}
	}
	return errState{notifier: n, last: make(map[string]error)}
}

// LastError is the error of the hotel's most recent failed action, nil after
// a successful one.
func (s *errState) LastError(hotelID string) error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.last[hotelID]
}

func (s *errState) setLast(hotelID string, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err == nil {
		delete(s.last, hotelID)
		return
	}
	s.last[hotelID] = err
}

// fail classifies err, records it and raises a toast. Validation errors are
// attached to their form instead and raise nothing.
func (s *errState) fail(ctx context.Context, op, hotelID string, err error) error {
	e := classify(op, err)
	kind := domain.KindOf(e)
	if kind == domain.KindValidation || errors.Is(e, context.Canceled) || errors.Is(e, domain.ErrSuperseded) {
		return e
	}
	s.setLast(hotelID, e)
	observability.ObserveStoreError(op, kind.String())

	ev := log.Warn()
	if kind == domain.KindGeneric {
		ev = log.Error().Stack()
		err = observability.WithStack(err)
	}
	ev.Err(err).Str("op", op).Str("hotel_id", hotelID).Str("kind", kind.String()).Msg("store action failed")

	var msg string
	var de *domain.Error
	if errors.As(e, &de) {
		msg = de.Message
	} else {
		msg = e.Error()
	}
	s.notifier.Notify(ctx, domain.Notice{Level: domain.NoticeError, Op: op, HotelID: hotelID, Message: msg})
	return e
}

func (s *errState) succeed(ctx context.Context, op, hotelID string) {
	s.setLast(hotelID, nil)
	if msg, ok := successMessages[op]; ok {
		s.notifier.Notify(ctx, domain.Notice{Level: domain.NoticeSuccess, Op: op, HotelID: hotelID, Message: msg})
	}
}

var localMessages = []struct {
	err error
	msg string
}{
	{domain.ErrDuplicateItem, "Hàng hóa đã có trong phiếu kiểm kho"},
	{domain.ErrItemNotInCheck, "Hàng hóa không có trong phiếu kiểm kho"},
	{domain.ErrPendingEdits, "Vui lòng lưu hoặc hủy các thay đổi đang chỉnh sửa trước khi gửi"},
	{domain.ErrNoStagedEdit, "Hàng hóa chưa ở chế độ chỉnh sửa"},
	{domain.ErrInvalidStock, "Số lượng thực tế phải là số nguyên không âm"},
	{domain.ErrEmptyCheck, "Phiếu kiểm kho chưa có hàng hóa"},
	{domain.ErrInvalidTransition, "Không thể chuyển trạng thái phòng"},
	{domain.ErrDraftConflict, "Phiếu kiểm kho vừa được thay đổi ở nơi khác. Vui lòng tải lại"},
	{domain.ErrForbidden, "Bạn không có quyền truy cập khách sạn này"},
	{domain.ErrNotFound, "Không tìm thấy dữ liệu"},
}

// local rejects a caller mistake (a duplicate item, a disallowed status
// change) found without contacting the API. Errors that already went
// through fail are passed back untouched.
func (s *errState) local(ctx context.Context, op, hotelID string, err error) error {
	var de *domain.Error
	var ve *domain.ValidationError
	if errors.As(err, &de) || errors.As(err, &ve) {
		return err
	}
	s.setLast(hotelID, err)
	msg := err.Error()
	for _, lm := range localMessages {
		if errors.Is(err, lm.err) {
			msg = lm.msg
			break
		}
	}
	s.notifier.Notify(ctx, domain.Notice{Level: domain.NoticeWarning, Op: op, HotelID: hotelID, Message: msg})
	return err
}

// UserMessage is the Vietnamese text shown for err, the same text its toast
// carried.
func UserMessage(err error) string {
	var de *domain.Error
	if errors.As(err, &de) {
		return de.Message
	}
	if errors.Is(err, domain.ErrSuperseded) {
		return ""
	}
	for _, lm := range localMessages {
		if errors.Is(err, lm.err) {
			return lm.msg
		}
	}
	var ve *domain.ValidationError
	if errors.As(err, &ve) {
		return "Vui lòng kiểm tra lại thông tin"
	}
	return "Đã xảy ra lỗi"
}
