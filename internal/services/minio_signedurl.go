package services

import (
	"context"
	"net/url"
	"os"
	"strings"
	"time"

	"libro_back_end/internal/database"
)

// GenerateSignedURL produit une URL de lecture temporaire vers un objet
// du bucket images (couvertures de livres, pièces jointes).
func GenerateSignedURL(ctx context.Context, objectPath string, duration time.Duration) (string, error) {
	bucket := os.Getenv("MINIO_BUCKET")

	// Accepte une URL complète ou un chemin relatif au bucket.
	key := objectPath
	if idx := strings.Index(objectPath, bucket+"/"); idx >= 0 {
		key = objectPath[idx+len(bucket)+1:]
	}
	key = strings.TrimPrefix(key, "/uploads/")

	presignedURL, err := database.MinIO.PresignedGetObject(ctx, bucket, key, duration, make(url.Values))
	if err != nil {
		return "", err
	}
	return presignedURL.String(), nil
}
