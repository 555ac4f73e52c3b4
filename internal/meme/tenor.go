package meme

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"

	"github.com/rs/zerolog/log"

	"cogbot/internal/common"
)

// Route of the random search in the Tenor API
const ROUTE_RANDOM = "/v1/random?q=%s&key=%s&limit=%d"

type Gif struct {
	ID      string
	URL     string
	ItemURL string
}

type Tenor struct {
	baseURL string
	key     string
	proxy   *common.Proxy
}

func NewTenor(baseURL string, key string, restriction common.Restriction, client *http.Client) *Tenor {
	return &Tenor{baseURL: baseURL, key: key, proxy: common.NewProxy(nil, restriction, client)}
}

// Random asks Tenor for up to limit random GIFs matching the query
func (tenor *Tenor) Random(ctx context.Context, query string, limit int) ([]Gif, error) {

	route := fmt.Sprintf(ROUTE_RANDOM, url.QueryEscape(query), url.QueryEscape(tenor.key), limit)
	data, err := tenor.proxy.Request(ctx, tenor.baseURL+route)
	if err != nil {
		return nil, err
	}
	gifs, err := DecodeResults(data)
	if err != nil {
		return nil, fmt.Errorf("could not decode tenor results: %w", err)
	}
	log.Debug().Msg(fmt.Sprintf("Tenor returned %d GIFs for '%s'", len(gifs), query))
	return gifs, nil
}

// DecodeResults keeps the results that carry a GIF rendition
func DecodeResults(data []byte) ([]Gif, error) {

	var response struct {
		Results []struct {
			ID      string `json:"id"`
			ItemURL string `json:"itemurl"`
			Media   []map[string]struct {
				URL string `json:"url"`
			} `json:"media"`
		} `json:"results"`
	}
	if err := json.Unmarshal(data, &response); err != nil {
		return nil, err
	}

	gifs := []Gif{}
	for _, result := range response.Results {
		if len(result.Media) == 0 || result.Media[0]["gif"].URL == "" {
			continue
		}
		gifs = append(gifs, Gif{ID: result.ID, URL: result.Media[0]["gif"].URL, ItemURL: result.ItemURL})
	}
	return gifs, nil
}
