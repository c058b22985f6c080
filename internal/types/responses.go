package types

import (
	"encoding/base64"
	"time"

	"github.com/homehub-dev/homehub/internal/models"
)

type ErrorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code"`
}

type TokenResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
}

type UserResponse struct {
	ID       string `json:"id"`
	Username string `json:"username"`
	FullName string `json:"full_name"`
}

type HubResponse struct {
	ID            string    `json:"id"`
	Name          string    `json:"name"`
	ConnectedAt   time.Time `json:"connected_at"`
	LastHeartbeat time.Time `json:"last_heartbeat"`
	Temperature   *float64  `json:"temperature"`
	Humidity      *float64  `json:"humidity"`
	AlarmState    bool      `json:"alarm_state"`
	Online        bool      `json:"online"`
}

type DeviceResponse struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	DeviceType  string    `json:"device_type"`
	Status      string    `json:"status"`
	LastUpdated time.Time `json:"last_updated"`
	HubID       string    `json:"hub_id"`
}

type CameraResponse struct {
	ID           string     `json:"id"`
	Name         string     `json:"name"`
	IsOnline     bool       `json:"is_online"`
	LastMotion   *time.Time `json:"last_motion"`
	LastImageURL *string    `json:"last_image_url"`
	CreatedAt    time.Time  `json:"created_at"`
	HubID        *string    `json:"hub_id"`
}

type FamilyMemberResponse struct {
	ID           string    `json:"id"`
	Name         string    `json:"name"`
	ImageURL     string    `json:"image_url"`
	FaceEncoding string    `json:"face_encoding,omitempty"`
	CreatedAt    time.Time `json:"created_at"`
}

func NewHubResponse(hub models.Hub) HubResponse {
	return HubResponse{
		ID:            hub.ID,
		Name:          hub.Name,
		ConnectedAt:   hub.ConnectedAt,
		LastHeartbeat: hub.LastHeartbeat,
		Temperature:   hub.Temperature,
		Humidity:      hub.Humidity,
		AlarmState:    hub.AlarmState,
		Online:        hub.Online,
	}
}

func NewDeviceResponse(device models.Device) DeviceResponse {
	return DeviceResponse{
		ID:          device.ID,
		Name:        device.Name,
		DeviceType:  device.DeviceType,
		Status:      device.Status,
		LastUpdated: device.LastUpdated,
		HubID:       device.HubID,
	}
}

func NewCameraResponse(camera models.Camera) CameraResponse {
	return CameraResponse{
		ID:           camera.ID,
		Name:         camera.Name,
		IsOnline:     camera.IsOnline,
		LastMotion:   camera.LastMotion,
		LastImageURL: camera.LastImageURL,
		CreatedAt:    camera.CreatedAt,
		HubID:        camera.HubID,
	}
}

// NewFamilyMemberResponse carries the face encoding base64 encoded, the same
// way it is accepted on create.
func NewFamilyMemberResponse(member models.FamilyMember) FamilyMemberResponse {
	resp := FamilyMemberResponse{
		ID:        member.ID,
		Name:      member.Name,
		ImageURL:  member.ImageURL,
		CreatedAt: member.CreatedAt,
	}

	if len(member.FaceEncoding) > 0 {
		resp.FaceEncoding = base64.StdEncoding.EncodeToString(member.FaceEncoding)
	}

	return resp
}
