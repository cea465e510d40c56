package uploads

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/cloudinary/cloudinary-go/v2"
	"github.com/cloudinary/cloudinary-go/v2/api/uploader"
)

const postsFolder = "postboard/posts"

type Cloudinary struct {
	cld *cloudinary.Cloudinary
}

func NewCloudinary(url string) (*Cloudinary, error) {
	cld, err := cloudinary.NewFromURL(url)
	if err != nil {
		return nil, fmt.Errorf("cloudinary configuration: %w", err)
	}
	return &Cloudinary{cld: cld}, nil
}

func (c *Cloudinary) Upload(ctx context.Context, r io.Reader, name, _ string) (string, error) {
	res, err := c.cld.Upload.Upload(ctx, r, uploader.UploadParams{
		Folder:         postsFolder,
		PublicID:       name,
		Transformation: "c_limit,w_1600,h_1600,q_auto",
	})
	if err != nil {
		return "", fmt.Errorf("upload to cloudinary: %w", err)
	}
	if res.Error.Message != "" {
		return "", errors.New("upload to cloudinary: " + res.Error.Message)
	}
	return res.SecureURL, nil
}
