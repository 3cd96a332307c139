package youtube

import (
	"fmt"
	"strings"
)

// Track describes one caption track offered for a video.
type Track struct {
	LanguageCode string `json:"language_code"`
	Name         string `json:"name"`
	Generated    bool   `json:"generated"`
	Translatable bool   `json:"translatable"`
	BaseURL      string `json:"-"`
}

type playerRequest struct {
	Context struct {
		Client struct {
			ClientName    string `json:"clientName"`
			ClientVersion string `json:"clientVersion"`
		} `json:"client"`
	} `json:"context"`
	VideoID string `json:"videoId"`
}

type playerResponse struct {
	PlayabilityStatus struct {
		Status string `json:"status"`
		Reason string `json:"reason"`
	} `json:"playabilityStatus"`
	Captions *struct {
		Renderer *struct {
			CaptionTracks []captionTrack `json:"captionTracks"`
		} `json:"playerCaptionsTracklistRenderer"`
	} `json:"captions"`
}

type captionTrack struct {
	BaseURL        string `json:"baseUrl"`
	LanguageCode   string `json:"languageCode"`
	Kind           string `json:"kind"`
	IsTranslatable bool   `json:"isTranslatable"`
	Name           struct {
		SimpleText string `json:"simpleText"`
		Runs       []struct {
			Text string `json:"text"`
		} `json:"runs"`
	} `json:"name"`
}

func (t captionTrack) displayName() string {
	if t.Name.SimpleText != "" {
		return t.Name.SimpleText
	}
	var sb strings.Builder
	for _, run := range t.Name.Runs {
		sb.WriteString(run.Text)
	}
	return sb.String()
}

func (p *playerResponse) tracks(videoID string) ([]Track, error) {
	status := p.PlayabilityStatus
	switch status.Status {
	case "OK", "":
	case "LOGIN_REQUIRED":
		if strings.Contains(status.Reason, "not a bot") {
			return nil, ErrTooManyRequests
		}
		return nil, fmt.Errorf("%w: %s: %s", ErrVideoUnavailable, videoID, status.Reason)
	default:
		reason := status.Reason
		if reason == "" {
			reason = strings.ToLower(status.Status)
		}
		return nil, fmt.Errorf("%w: %s: %s", ErrVideoUnavailable, videoID, reason)
	}

	if p.Captions == nil || p.Captions.Renderer == nil || len(p.Captions.Renderer.CaptionTracks) == 0 {
		return nil, fmt.Errorf("%w: %s", ErrTranscriptsDisabled, videoID)
	}

	raw := p.Captions.Renderer.CaptionTracks
	tracks := make([]Track, 0, len(raw))
	for _, t := range raw {
		tracks = append(tracks, Track{
			LanguageCode: t.LanguageCode,
			Name:         t.displayName(),
			Generated:    t.Kind == "asr",
			Translatable: t.IsTranslatable,
			BaseURL:      t.BaseURL,
		})
	}
	return tracks, nil
}

// SelectTrack picks the track for the first language in languages that has
// one, preferring manually created tracks over generated ones.
func SelectTrack(tracks []Track, languages []string) (Track, error) {
	for _, lang := range languages {
		for _, generated := range []bool{false, true} {
			for _, t := range tracks {
				if t.Generated == generated && strings.EqualFold(t.LanguageCode, lang) {
					return t, nil
				}
			}
		}
	}

	available := make([]string, len(tracks))
	for i, t := range tracks {
		available[i] = t.LanguageCode
	}
	return Track{}, fmt.Errorf("%w: wanted %s, available %s",
		ErrNoTranscriptFound, strings.Join(languages, ","), strings.Join(available, ","))
}
