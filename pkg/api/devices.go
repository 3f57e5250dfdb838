package api

import (
	"context"
	"net/http"
	"net/url"

	"github.com/ErfanXH/Polaris/pkg/models"
)

// RegisterDevice registers a device for the authenticated user
func (c *Client) RegisterDevice(ctx context.Context, in models.DeviceInput) (*models.Device, error) {
	var device models.Device
	if err := c.do(ctx, http.MethodPost, "/api/v1/devices", in, &device, nil); err != nil {
		return nil, err
	}
	return &device, nil
}

// ListDevices returns the devices of the authenticated user
func (c *Client) ListDevices(ctx context.Context) ([]models.Device, error) {
	var devices []models.Device
	if err := c.do(ctx, http.MethodGet, "/api/v1/devices", nil, &devices, nil); err != nil {
		return nil, err
	}
	return devices, nil
}

func devicePath(deviceID, suffix string) string {
	return "/api/v1/devices/" + url.PathEscape(deviceID) + suffix
}
