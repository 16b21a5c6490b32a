package storage

import (
	"context"
	"strings"
	"testing"

	"greencycle/pkg/types"

	"github.com/stretchr/testify/require"
)

// Size validation runs before any S3 call, so a nil client is safe here.
func TestUploadRejectsBadSizes(t *testing.T) {
	store := NewImageStore(nil, "greencycle-images", "ap-south-1")

	_, err := store.Upload(context.Background(), "ewaste-images/u1/photo.jpg", strings.NewReader(""), 0, "image/jpeg")
	require.ErrorIs(t, err, types.ErrValidation)

	_, err = store.Upload(context.Background(), "ewaste-images/u1/photo.jpg", strings.NewReader("x"), MaxUploadBytes+1, "image/jpeg")
	require.ErrorIs(t, err, types.ErrValidation)
}

func TestPublicURL(t *testing.T) {
	store := NewImageStore(nil, "greencycle-images", "ap-south-1")

	url := store.PublicURL("ewaste-images/u1/photo.jpg")
	require.Equal(t, "https://greencycle-images.s3.ap-south-1.amazonaws.com/ewaste-images/u1/photo.jpg", url)
}
