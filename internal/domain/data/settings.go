package data

import "encoding/json"

type DesignSettings struct {
	LogoURL      string      `json:"logoUrl,omitempty"`
	FaviconURL   string      `json:"faviconUrl,omitempty"`
	SiteTitle    string      `json:"siteTitle,omitempty"`
	MainFont     string      `json:"mainFont,omitempty"`
	FontSizeBase json.Number `json:"fontSizeBase,omitempty"`
	PrimaryColor string      `json:"primaryColor,omitempty"`
}

type SEOSettings struct {
	GlobalTitle       string             `json:"globalTitle,omitempty"`
	GlobalDescription string             `json:"globalDescription,omitempty"`
	GlobalKeywords    string             `json:"globalKeywords,omitempty"`
	GeoPosition       string             `json:"geoPosition,omitempty"`
	GeoPlacename      string             `json:"geoPlacename,omitempty"`
	GeoRegion         string             `json:"geoRegion,omitempty"`
	OGImage           string             `json:"ogImage,omitempty"`
	Pages             map[string]PageSEO `json:"pages,omitempty"`
}

type PageSEO struct {
	Title        string `json:"title,omitempty"`
	Description  string `json:"description,omitempty"`
	GeoPosition  string `json:"geoPosition,omitempty"`
	GeoPlacename string `json:"geoPlacename,omitempty"`
}

type IntegrationSettings struct {
	GoogleCalendar GoogleCalendar `json:"googleCalendar"`
}

type GoogleCalendar struct {
	APIKey     string `json:"apiKey,omitempty"`
	CalendarID string `json:"calendarId,omitempty"`
}

func (g GoogleCalendar) Configured() bool {
	return g.APIKey != "" && g.CalendarID != ""
}

// MediaSettings holds the platform links shown on the media page.
type MediaSettings struct {
	YoutubeChannelID string   `json:"youtubeChannelId,omitempty"`
	YoutubePlaylists []string `json:"youtubePlaylists,omitempty"`
	PodcastURL       string   `json:"podcastUrl,omitempty"`
	SpotifyURL       string   `json:"spotifyUrl,omitempty"`
	AppleURL         string   `json:"applePodcastUrl,omitempty"`
	YoutubeURL       string   `json:"youtubeUrl,omitempty"`
}

func (m MediaSettings) Links() map[string]string {
	links := map[string]string{}
	if m.PodcastURL != "" {
		links["podcast"] = m.PodcastURL
	}
	if m.SpotifyURL != "" {
		links["spotify"] = m.SpotifyURL
	}
	if m.AppleURL != "" {
		links["apple"] = m.AppleURL
	}
	if m.YoutubeURL != "" {
		links["youtube"] = m.YoutubeURL
	} else if m.YoutubeChannelID != "" {
		links["youtube"] = "https://www.youtube.com/channel/" + m.YoutubeChannelID
	}
	return links
}
