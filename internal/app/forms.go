package app

import (
	"strings"
	"time"

	"hotel_desk/internal/domain"
)

// Forms hold the dashboard's in-progress input. Each has a typed setter per
// field; Validate reports every invalid field and keeps the result in Errors.

// RoomForm serves both create and update; HotelID is only required on
// create.
type RoomForm struct {
	HotelID    string            `json:"hotelId"`
	Number     string            `json:"roomNumber" validate:"required"`
	Floor      string            `json:"floor" validate:"required"`
	CategoryID string            `json:"categoryId" validate:"required"`
	Status     domain.RoomStatus `json:"status,omitempty"`
	Note       string            `json:"note,omitempty"`
	Image      *domain.Upload    `json:"-" validate:"-"`

	Errors *domain.ValidationError `json:"-" validate:"-"`
}

func (f *RoomForm) SetHotel(id string)                { f.HotelID = strings.TrimSpace(id) }
func (f *RoomForm) SetNumber(n string)                { f.Number = strings.TrimSpace(n) }
func (f *RoomForm) SetFloor(fl string)                { f.Floor = strings.TrimSpace(fl) }
func (f *RoomForm) SetCategory(id string)             { f.CategoryID = strings.TrimSpace(id) }
func (f *RoomForm) SetStatus(s domain.RoomStatus)     { f.Status = s }
func (f *RoomForm) SetNote(n string)                  { f.Note = n }
func (f *RoomForm) SetImage(u *domain.Upload)         { f.Image = u }
func (f *RoomForm) Reset()                            { *f = RoomForm{HotelID: f.HotelID} }
func (f *RoomForm) Validate() *domain.ValidationError { f.Errors = validateForm(f); return f.Errors }

func (f *RoomForm) input() domain.RoomInput {
	return domain.RoomInput{
		HotelID: f.HotelID, Number: f.Number, Floor: f.Floor, CategoryID: f.CategoryID,
		Status: f.Status, Note: f.Note, Image: f.Image,
	}
}

// CategoryForm uses pointers for prices so an absent price is REQUIRED
// rather than silently 0.
type CategoryForm struct {
	HotelID        string         `json:"hotelId" validate:"required"`
	Name           string         `json:"name" validate:"required"`
	Description    string         `json:"description,omitempty"`
	HourlyPrice    *int64         `json:"hourlyPrice" validate:"required,gte=0"`
	DailyPrice     *int64         `json:"dailyPrice" validate:"required,gte=0"`
	OvernightPrice *int64         `json:"overnightPrice" validate:"required,gte=0"`
	Image          *domain.Upload `json:"-" validate:"-"`

	Errors *domain.ValidationError `json:"-" validate:"-"`
}

func (f *CategoryForm) SetHotel(id string)        { f.HotelID = strings.TrimSpace(id) }
func (f *CategoryForm) SetName(n string)          { f.Name = strings.TrimSpace(n) }
func (f *CategoryForm) SetDescription(d string)   { f.Description = d }
func (f *CategoryForm) SetHourlyPrice(p int64)    { f.HourlyPrice = &p }
func (f *CategoryForm) SetDailyPrice(p int64)     { f.DailyPrice = &p }
func (f *CategoryForm) SetOvernightPrice(p int64) { f.OvernightPrice = &p }
func (f *CategoryForm) SetImage(u *domain.Upload) { f.Image = u }
func (f *CategoryForm) Reset()                    { *f = CategoryForm{HotelID: f.HotelID} }
func (f *CategoryForm) Validate() *domain.ValidationError {
	f.Errors = validateForm(f)
	return f.Errors
}

func deref(p *int64) int64 {
	if p == nil {
		return 0
	}
	return *p
}

func (f *CategoryForm) input() domain.CategoryInput {
	return domain.CategoryInput{
		HotelID: f.HotelID, Name: f.Name, Description: f.Description,
		HourlyPrice: deref(f.HourlyPrice), DailyPrice: deref(f.DailyPrice),
		OvernightPrice: deref(f.OvernightPrice), Image: f.Image,
	}
}

type BookingForm struct {
	HotelID    string    `json:"hotelId" validate:"required"`
	RoomID     string    `json:"roomId" validate:"required"`
	CheckIn    time.Time `json:"checkInDate" validate:"required"`
	CheckOut   time.Time `json:"checkOutDate" validate:"required,gtfield=CheckIn"`
	GuestName  string    `json:"guestName" validate:"required,min=2"`
	GuestPhone string    `json:"phoneNumber" validate:"required,vnphone"`
	GuestCount int       `json:"guestCount" validate:"gt=0"`
	Note       string    `json:"note,omitempty"`

	Errors *domain.ValidationError `json:"-" validate:"-"`
}

func (f *BookingForm) SetHotel(id string)      { f.HotelID = strings.TrimSpace(id) }
func (f *BookingForm) SetRoom(id string)       { f.RoomID = strings.TrimSpace(id) }
func (f *BookingForm) SetCheckIn(t time.Time)  { f.CheckIn = t }
func (f *BookingForm) SetCheckOut(t time.Time) { f.CheckOut = t }
func (f *BookingForm) SetGuestName(n string)   { f.GuestName = strings.TrimSpace(n) }
func (f *BookingForm) SetGuestPhone(p string)  { f.GuestPhone = strings.ReplaceAll(strings.TrimSpace(p), " ", "") }
func (f *BookingForm) SetGuestCount(n int)     { f.GuestCount = n }
func (f *BookingForm) SetNote(n string)        { f.Note = n }
func (f *BookingForm) Reset()                  { *f = BookingForm{HotelID: f.HotelID} }
func (f *BookingForm) Validate() *domain.ValidationError {
	f.Errors = validateForm(f)
	return f.Errors
}

func (f *BookingForm) input(createdBy string) domain.BookingInput {
	return domain.BookingInput{
		HotelID: f.HotelID, RoomID: f.RoomID, CheckIn: f.CheckIn, CheckOut: f.CheckOut,
		GuestName: f.GuestName, GuestPhone: f.GuestPhone, GuestCount: f.GuestCount,
		CreatedBy: createdBy, Note: f.Note,
	}
}

// WalkInForm is the guest form of a direct check-in. Check-in time is now.
type WalkInForm struct {
	GuestName  string    `json:"guestName" validate:"required,min=2"`
	GuestPhone string    `json:"phoneNumber" validate:"required,vnphone"`
	GuestCount int       `json:"guestCount" validate:"gt=0"`
	CheckOut   time.Time `json:"checkOutDate" validate:"required"`
	Note       string    `json:"note,omitempty"`

	Errors *domain.ValidationError `json:"-" validate:"-"`
}

func (f *WalkInForm) SetGuestName(n string)   { f.GuestName = strings.TrimSpace(n) }
func (f *WalkInForm) SetGuestPhone(p string)  { f.GuestPhone = strings.ReplaceAll(strings.TrimSpace(p), " ", "") }
func (f *WalkInForm) SetGuestCount(n int)     { f.GuestCount = n }
func (f *WalkInForm) SetCheckOut(t time.Time) { f.CheckOut = t }
func (f *WalkInForm) SetNote(n string)        { f.Note = n }

// Validate also rejects a checkout that is not after now.
func (f *WalkInForm) Validate(now time.Time) *domain.ValidationError {
	f.Errors = validateForm(f)
	if !f.CheckOut.IsZero() && !f.CheckOut.After(now) {
		f.Errors = withField(f.Errors, "checkOutDate", domain.CodeInvalidDateRange)
	}
	return f.Errors
}

func (f *WalkInForm) walkIn() domain.WalkIn {
	return domain.WalkIn{
		GuestName: f.GuestName, GuestPhone: f.GuestPhone, GuestCount: f.GuestCount,
		CheckOut: f.CheckOut, Note: f.Note,
	}
}

type InventoryItemForm struct {
	HotelID      string         `json:"hotelId" validate:"required"`
	Code         string         `json:"code" validate:"required"`
	Name         string         `json:"name" validate:"required"`
	Unit         string         `json:"unit" validate:"required"`
	SellingPrice int64          `json:"sellingPrice" validate:"gte=0"`
	CostPrice    int64          `json:"costPrice" validate:"gte=0"`
	Stock        int64          `json:"stock" validate:"gte=0"`
	Category     string         `json:"category,omitempty"`
	Type         string         `json:"type,omitempty"`
	Image        *domain.Upload `json:"-" validate:"-"`

	Errors *domain.ValidationError `json:"-" validate:"-"`
}

func (f *InventoryItemForm) SetHotel(id string)        { f.HotelID = strings.TrimSpace(id) }
func (f *InventoryItemForm) SetCode(c string)          { f.Code = strings.TrimSpace(c) }
func (f *InventoryItemForm) SetName(n string)          { f.Name = strings.TrimSpace(n) }
func (f *InventoryItemForm) SetUnit(u string)          { f.Unit = strings.TrimSpace(u) }
func (f *InventoryItemForm) SetSellingPrice(p int64)   { f.SellingPrice = p }
func (f *InventoryItemForm) SetCostPrice(p int64)      { f.CostPrice = p }
func (f *InventoryItemForm) SetStock(n int64)          { f.Stock = n }
func (f *InventoryItemForm) SetCategory(c string)      { f.Category = c }
func (f *InventoryItemForm) SetType(t string)          { f.Type = t }
func (f *InventoryItemForm) SetImage(u *domain.Upload) { f.Image = u }
func (f *InventoryItemForm) Reset()                    { *f = InventoryItemForm{HotelID: f.HotelID} }
func (f *InventoryItemForm) Validate() *domain.ValidationError {
	f.Errors = validateForm(f)
	return f.Errors
}

func (f *InventoryItemForm) input() domain.InventoryInput {
	return domain.InventoryInput{
		HotelID: f.HotelID, Code: f.Code, Name: f.Name, Unit: f.Unit,
		SellingPrice: f.SellingPrice, CostPrice: f.CostPrice, Stock: f.Stock,
		Category: f.Category, Type: f.Type, Image: f.Image,
	}
}

type HotelForm struct {
	Name    string         `json:"name" validate:"required,min=2"`
	Address string         `json:"address,omitempty"`
	Phone   string         `json:"phone,omitempty" validate:"omitempty,vnphone"`
	Image   *domain.Upload `json:"-" validate:"-"`

	Errors *domain.ValidationError `json:"-" validate:"-"`
}

func (f *HotelForm) SetName(n string)          { f.Name = strings.TrimSpace(n) }
func (f *HotelForm) SetAddress(a string)       { f.Address = strings.TrimSpace(a) }
func (f *HotelForm) SetPhone(p string)         { f.Phone = strings.ReplaceAll(strings.TrimSpace(p), " ", "") }
func (f *HotelForm) SetImage(u *domain.Upload) { f.Image = u }
func (f *HotelForm) Reset()                    { *f = HotelForm{} }
func (f *HotelForm) Validate() *domain.ValidationError {
	f.Errors = validateForm(f)
	return f.Errors
}

func (f *HotelForm) input() domain.HotelInput {
	return domain.HotelInput{Name: f.Name, Address: f.Address, Phone: f.Phone, Image: f.Image}
}
