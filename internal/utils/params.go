package utils

import (
	"errors"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// GetIDParam returns the path parameter name as a canonical UUID string.
func GetIDParam(ctx *gin.Context, name string) (string, error) {
	raw := ctx.Param(name)

	if raw == "" {
		return "", errors.New("ID not found")
	}

	id, err := uuid.Parse(raw)

	if err != nil {
		return "", errors.New("Invalid ID")
	}

	return id.String(), nil
}

func GetHubID(ctx *gin.Context) (string, error) {
	return GetIDParam(ctx, "hub_id")
}

func GetDeviceID(ctx *gin.Context) (string, error) {
	return GetIDParam(ctx, "device_id")
}

func GetCameraID(ctx *gin.Context) (string, error) {
	return GetIDParam(ctx, "camera_id")
}

func GetMemberID(ctx *gin.Context) (string, error) {
	return GetIDParam(ctx, "member_id")
}

func GetHubDeviceID(ctx *gin.Context) (string, string, error) {
	hubID, err := GetHubID(ctx)

	if err != nil {
		return "", "", err
	}

	deviceID, err := GetDeviceID(ctx)

	if err != nil {
		return "", "", err
	}

	return hubID, deviceID, nil
}

func GetCameraMemberID(ctx *gin.Context) (string, string, error) {
	cameraID, err := GetCameraID(ctx)

	if err != nil {
		return "", "", err
	}

	memberID, err := GetMemberID(ctx)

	if err != nil {
		return "", "", err
	}

	return cameraID, memberID, nil
}
