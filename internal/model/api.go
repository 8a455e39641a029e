package model

type HealthResponse struct {
	OK bool  `json:"ok"`
	TS int64 `json:"ts,omitempty"`
}

type SelftestResponse struct {
	OK       bool   `json:"ok"`
	Selftest bool   `json:"selftest"`
	Runtime  string `json:"runtime"`
	TS       int64  `json:"ts"`
}

// ErrorResponse is the envelope for every failure path. Message is always
// set; the remaining fields are populated only for upstream failures.
type ErrorResponse struct {
	OK         bool     `json:"ok"`
	Message    string   `json:"message"`
	Provider   string   `json:"provider,omitempty"`
	Status     int      `json:"status,omitempty"`
	RetryAfter string   `json:"retryAfter,omitempty"`
	Body       string   `json:"body,omitempty"`
	Hint       string   `json:"hint,omitempty"`
	Examples   []string `json:"examples,omitempty"`
}

// GenerateResponse carries the final text under four names. Content, Result
// and Message exist only for older clients and must always equal Text.
type GenerateResponse struct {
	OK       bool   `json:"ok"`
	Provider string `json:"provider"`
	Model    string `json:"model"`
	Via      string `json:"via,omitempty"`
	Lang     string `json:"lang"`
	Text     string `json:"text"`
	Content  string `json:"content"`
	Result   string `json:"result"`
	Message  string `json:"message"`
}

type Image struct {
	ID           int    `json:"id,omitempty"`
	URL          string `json:"url"`
	Alt          string `json:"alt"`
	Photographer string `json:"photographer"`
	Color        string `json:"color,omitempty"`
}

type ImageSearchResponse struct {
	OK           bool    `json:"ok"`
	Count        int     `json:"count"`
	Images       []Image `json:"images"`
	Photos       any     `json:"photos,omitempty"`
	Page         int     `json:"page,omitempty"`
	PerPage      int     `json:"per_page,omitempty"`
	TotalResults int     `json:"total_results,omitempty"`
}

type FeaturedImagesResponse struct {
	OK          bool     `json:"ok"`
	Count       int      `json:"count"`
	Images      []Image  `json:"images"`
	Page        int      `json:"page"`
	PerCategory int      `json:"per_category"`
	Categories  []string `json:"categories"`
	TS          int64    `json:"ts"`
}

type CreateUserRequest struct {
	WalletAddress        string `json:"walletAddress"`
	FarcasterFID         string `json:"farcasterFid,omitempty"`
	FarcasterUsername    string `json:"farcasterUsername,omitempty"`
	FarcasterDisplayName string `json:"farcasterDisplayName,omitempty"`
	FarcasterAvatar      string `json:"farcasterAvatar,omitempty"`
}

type UpdateUserRequest struct {
	FarcasterFID         *string `json:"farcasterFid,omitempty"`
	FarcasterUsername    *string `json:"farcasterUsername,omitempty"`
	FarcasterDisplayName *string `json:"farcasterDisplayName,omitempty"`
	FarcasterAvatar      *string `json:"farcasterAvatar,omitempty"`
}

type SelectedImage struct {
	URL          string `json:"url"`
	Alt          string `json:"alt"`
	Photographer string `json:"photographer"`
	Source       string `json:"source"`
}

type CreateDraftRequest struct {
	UserID           string         `json:"userId"`
	Topic            string         `json:"topic"`
	ContentType      string         `json:"contentType"`
	Tone             string         `json:"tone"`
	GeneratedContent string         `json:"generatedContent,omitempty"`
	SelectedImage    *SelectedImage `json:"selectedImage,omitempty"`
}

type UpdateDraftRequest struct {
	Topic             *string        `json:"topic,omitempty"`
	ContentType       *string        `json:"contentType,omitempty"`
	Tone              *string        `json:"tone,omitempty"`
	GeneratedContent  *string        `json:"generatedContent,omitempty"`
	SelectedImage     *SelectedImage `json:"selectedImage,omitempty"`
	IsPublished       *bool          `json:"isPublished,omitempty"`
	FarcasterCastHash *string        `json:"farcasterCastHash,omitempty"`
}

type GenerateDraftContentRequest struct {
	Topic       string `json:"topic"`
	ContentType string `json:"contentType"`
	Tone        string `json:"tone"`
}

type DraftContentResponse struct {
	Content string `json:"content"`
}

type PublishCastRequest struct {
	DraftID  string `json:"draftId"`
	ImageURL string `json:"imageUrl,omitempty"`
}

type CastPreparationResponse struct {
	CastContent  string `json:"castContent"`
	FarcasterURL string `json:"farcasterUrl"`
	Ready        bool   `json:"ready"`
	Message      string `json:"message,omitempty"`
}

type WebhookAckResponse struct {
	Success bool `json:"success"`
}

type DeleteResponse struct {
	Success bool `json:"success"`
}
