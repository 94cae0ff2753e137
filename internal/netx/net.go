// Package netx holds the one piece of raw HTTP plumbing the client needs
// outside its API calls: pushing profile picture bytes to object storage.
package netx

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
)

// UploadToS3PresignedURL PUTs the picture to a presigned URL issued by the
// server. The URL already carries the authorization, so the request goes
// straight to the bucket without any API credentials.
func UploadToS3PresignedURL(ctx context.Context, url string, picture []byte) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPut, url, bytes.NewReader(picture))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/octet-stream")

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		b, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("upload failed: %s; body: %s", resp.Status, string(b))
	}
	return nil
}
