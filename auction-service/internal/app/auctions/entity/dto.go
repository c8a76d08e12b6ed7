package entity

import (
	"fmt"
	"strconv"
	"time"

	"github.com/samber/lo"
	"github.com/shopspring/decimal"
)

// DateTimeLayout is the wire format of every date field.
const DateTimeLayout = "2006-01-02T15:04:05Z"

// Timestamp renders as UTC DateTimeLayout and accepts any RFC 3339 input.
type Timestamp time.Time

func (t Timestamp) Time() time.Time {
	return time.Time(t)
}

func (t Timestamp) MarshalJSON() ([]byte, error) {
	return []byte(strconv.Quote(time.Time(t).UTC().Format(DateTimeLayout))), nil
}

func (t *Timestamp) UnmarshalJSON(data []byte) error {
	raw, err := strconv.Unquote(string(data))
	if err != nil {
		return fmt.Errorf("datetime must be a string: %w", err)
	}
	parsed, err := time.Parse(time.RFC3339, raw)
	if err != nil {
		return fmt.Errorf("datetime has wrong format, use %s", DateTimeLayout)
	}
	*t = Timestamp(parsed.UTC())
	return nil
}

// ============================================================================
// Requests
// ============================================================================

type CategoryRequest struct {
	Name string `json:"name" validate:"required,max=50"`
}

// AuctionRequest backs POST, PUT and PATCH. Nil fields are "not provided";
// POST and PUT require every field, PATCH applies only the provided ones.
type AuctionRequest struct {
	Title       *string          `json:"title" validate:"omitempty,max=150"`
	Description *string          `json:"description"`
	Price       *decimal.Decimal `json:"price"`
	Stock       *int             `json:"stock"`
	Brand       *string          `json:"brand" validate:"omitempty,max=100"`
	Category    *uint            `json:"category"`
	Thumbnail   *string          `json:"thumbnail" validate:"omitempty,url"`
	ClosingDate *Timestamp       `json:"closing_date"`
}

// MissingField returns the JSON name of the first absent field, or "".
func (r *AuctionRequest) MissingField() string {
	switch {
	case r.Title == nil:
		return "title"
	case r.Description == nil:
		return "description"
	case r.Price == nil:
		return "price"
	case r.Stock == nil:
		return "stock"
	case r.Brand == nil:
		return "brand"
	case r.Category == nil:
		return "category"
	case r.Thumbnail == nil:
		return "thumbnail"
	case r.ClosingDate == nil:
		return "closing_date"
	}
	return ""
}

// BidRequest carries the bid price. Auction is accepted for compatibility
// and ignored: the auction always comes from the path.
type BidRequest struct {
	Price   *decimal.Decimal `json:"price"`
	Auction *uint            `json:"auction,omitempty"`
}

type RatingRequest struct {
	Value *int `json:"value"`
}

type CommentRequest struct {
	Title *string `json:"title"`
	Text  *string `json:"text"`
}

// ============================================================================
// Responses
// ============================================================================

type CategoryResponse struct {
	ID   uint   `json:"id"`
	Name string `json:"name"`
}

// AuctionDetail is the detail view. Derived fields are computed per request.
type AuctionDetail struct {
	ID            uint      `json:"id"`
	Title         string    `json:"title"`
	Description   string    `json:"description"`
	Price         string    `json:"price"`
	Stock         int       `json:"stock"`
	Brand         string    `json:"brand"`
	Category      uint      `json:"category"`
	Thumbnail     string    `json:"thumbnail"`
	CreationDate  Timestamp `json:"creation_date"`
	ClosingDate   Timestamp `json:"closing_date"`
	Auctioneer    string    `json:"auctioneer"`
	IsOpen        bool      `json:"isOpen"`
	AverageRating float64   `json:"average_rating"`
}

// AuctionListItem adds last_call, which only the list endpoints expose.
type AuctionListItem struct {
	AuctionDetail
	LastCall bool `json:"last_call"`
}

type BidResponse struct {
	ID           uint      `json:"id"`
	Auction      uint      `json:"auction"`
	Price        string    `json:"price"`
	CreationDate Timestamp `json:"creation_date"`
	Bidder       string    `json:"bidder"`
}

// RatingResponse has nullable id and value so that "my rating" can answer
// with an empty record when the caller has not rated yet.
type RatingResponse struct {
	ID      *uint  `json:"id"`
	Value   *int   `json:"value"`
	User    string `json:"user"`
	Auction uint   `json:"auction"`
}

type CommentResponse struct {
	ID           *uint      `json:"id"`
	Title        *string    `json:"title"`
	Text         *string    `json:"text"`
	CreationDate *Timestamp `json:"creation_date"`
	EditDate     *Timestamp `json:"edit_date"`
	User         string     `json:"user"`
	Auction      uint       `json:"auction"`
}

type ErrorResponse struct {
	Error   string `json:"error"`
	Code    string `json:"code"`
	Message string `json:"message"`
	Field   string `json:"field,omitempty"`
}

// ============================================================================
// Mapping
// ============================================================================

func FormatPrice(d decimal.Decimal) string {
	return d.StringFixed(2)
}

func NewCategoryResponse(c *Category) CategoryResponse {
	return CategoryResponse{ID: c.ID, Name: c.Name}
}

func NewBidResponse(b *Bid) BidResponse {
	return BidResponse{
		ID:           b.ID,
		Auction:      b.AuctionID,
		Price:        FormatPrice(b.Price),
		CreationDate: Timestamp(b.CreationDate),
		Bidder:       b.Bidder,
	}
}

func NewRatingResponse(r *Rating) RatingResponse {
	return RatingResponse{
		ID:      lo.ToPtr(r.ID),
		Value:   lo.ToPtr(r.Value),
		User:    r.User,
		Auction: r.AuctionID,
	}
}

func NewCommentResponse(c *Comment) CommentResponse {
	return CommentResponse{
		ID:           lo.ToPtr(c.ID),
		Title:        lo.ToPtr(c.Title),
		Text:         lo.ToPtr(c.Text),
		CreationDate: lo.ToPtr(Timestamp(c.CreationDate)),
		EditDate:     lo.ToPtr(Timestamp(c.EditDate)),
		User:         c.User,
		Auction:      c.AuctionID,
	}
}
