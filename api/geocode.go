package api

import (
	"context"
	"fmt"
	"strconv"

	"github.com/relabs-tech/aqaar/core/client"
)

// NominatimURL is the public reverse geocoding service
const NominatimURL = "https://nominatim.openstreetmap.org"

// Geocoder resolves coordinates of properties into readable addresses. It talks to a
// separate service and therefore never sends the bearer token.
type Geocoder struct {
	client client.Client
}

// NewGeocoder creates a geocoder on top of c. The client should carry no token
// source; its language source selects the language of the address, which is sent as
// Accept-Language like on every request.
func NewGeocoder(c client.Client) *Geocoder {
	return &Geocoder{client: c.WithHeader("User-Agent", "aqaar-ownerdesk")}
}

type reverseResponse struct {
	DisplayName string `json:"display_name"`
}

// ReverseGeocode returns the address at lat/lng. Without coordinates, that is if
// either is zero, it returns the empty string without asking the service.
func (g *Geocoder) ReverseGeocode(ctx context.Context, lat, lng float64) (string, error) {
	if lat == 0 || lng == 0 {
		return "", nil
	}
	path := fmt.Sprintf("/reverse?format=jsonv2&lat=%s&lon=%s",
		strconv.FormatFloat(lat, 'f', -1, 64), strconv.FormatFloat(lng, 'f', -1, 64))
	var res reverseResponse
	if _, err := g.client.WithContext(ctx).Get(path, &res); err != nil {
		return "", err
	}
	return res.DisplayName, nil
}
