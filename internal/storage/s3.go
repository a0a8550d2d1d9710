// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package storage uploads staged images straight to an S3-compatible bucket
// when the dashboard is configured to bypass the backend's asset service.
// It wraps the AWS SDK v2 and uses path-style access (required by CEPH/Hetzner
// and most self-hosted S3 gateways).
package storage

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"mime"
	"net/url"
	"path"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	s3types "github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/google/uuid"

	"blogdesk/internal/models"
	"blogdesk/internal/staging"
)

// ErrForeignURL is returned when asked to delete a URL outside the bucket.
var ErrForeignURL = errors.New("url does not belong to the asset bucket")

// objectAPI is the subset of *s3.Client the asset backend calls.
type objectAPI interface {
	PutObject(ctx context.Context, in *s3.PutObjectInput, opts ...func(*s3.Options)) (*s3.PutObjectOutput, error)
	DeleteObject(ctx context.Context, in *s3.DeleteObjectInput, opts ...func(*s3.Options)) (*s3.DeleteObjectOutput, error)
}

// Config holds the bucket connection settings.
type Config struct {
	Endpoint  string
	Region    string
	AccessKey string
	SecretKey string
	Bucket    string
	PublicURL string // optional CDN/direct URL for objects
}

// Client stores assets in one public bucket.
type Client struct {
	s3        objectAPI
	bucket    string
	endpoint  string
	publicURL string
	now       func() time.Time
}

// New creates an S3 asset client with path-style addressing. Returns
// (nil, nil) if endpoint or credentials are empty, allowing the app to
// start without direct storage.
func New(cfg Config) (*Client, error) {
	if cfg.Endpoint == "" || cfg.AccessKey == "" || cfg.SecretKey == "" {
		return nil, nil
	}
	if cfg.Bucket == "" {
		return nil, errors.New("s3 bucket is required")
	}

	endpoint := strings.TrimRight(cfg.Endpoint, "/")
	s3Client := s3.New(s3.Options{
		Region:       cfg.Region,
		BaseEndpoint: aws.String(endpoint),
		Credentials:  credentials.NewStaticCredentialsProvider(cfg.AccessKey, cfg.SecretKey, ""),
		UsePathStyle: true,
	})

	return newClient(s3Client, endpoint, cfg.Bucket, cfg.PublicURL), nil
}

func newClient(api objectAPI, endpoint, bucket, publicURL string) *Client {
	return &Client{
		s3:        api,
		bucket:    bucket,
		endpoint:  strings.TrimRight(endpoint, "/"),
		publicURL: strings.TrimRight(publicURL, "/"),
		now:       time.Now,
	}
}

// objectKey builds assets/YYYY/MM/<uuid><ext>.
func (c *Client) objectKey(f staging.File) string {
	ext := strings.ToLower(path.Ext(f.Name))
	if ext == "" {
		if exts, _ := mime.ExtensionsByType(f.ContentType); len(exts) > 0 {
			ext = exts[0]
		}
	}
	t := c.now().UTC()
	return fmt.Sprintf("assets/%04d/%02d/%s%s", t.Year(), int(t.Month()), uuid.NewString(), ext)
}

// Upload stores a staged file with public-read ACL. The object key doubles
// as the asset id.
func (c *Client) Upload(ctx context.Context, f staging.File) (models.UploadedAsset, error) {
	key := c.objectKey(f)
	_, err := c.s3.PutObject(ctx, &s3.PutObjectInput{
		Bucket:        aws.String(c.bucket),
		Key:           aws.String(key),
		Body:          bytes.NewReader(f.Data),
		ContentLength: aws.Int64(int64(len(f.Data))),
		ContentType:   aws.String(f.ContentType),
		ACL:           s3types.ObjectCannedACLPublicRead,
	})
	if err != nil {
		return models.UploadedAsset{}, fmt.Errorf("s3 upload %s/%s: %w", c.bucket, key, err)
	}
	return models.UploadedAsset{ID: key, URL: c.FileURL(key)}, nil
}

// DeleteByID removes the object whose key is id.
func (c *Client) DeleteByID(ctx context.Context, id string) error {
	_, err := c.s3.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(c.bucket),
		Key:    aws.String(id),
	})
	if err != nil {
		return fmt.Errorf("s3 delete %s/%s: %w", c.bucket, id, err)
	}
	return nil
}

// DeleteByURL maps a public URL back to its key and removes the object.
func (c *Client) DeleteByURL(ctx context.Context, rawURL string) error {
	key, ok := c.KeyFromURL(rawURL)
	if !ok {
		return fmt.Errorf("s3 delete %s: %w", rawURL, ErrForeignURL)
	}
	return c.DeleteByID(ctx, key)
}

// FileURL returns the public URL for a key. Uses the configured public URL
// if set, otherwise builds a path-style URL.
func (c *Client) FileURL(key string) string {
	if c.publicURL != "" {
		return c.publicURL + "/" + key
	}
	return c.endpoint + "/" + c.bucket + "/" + key
}

// KeyFromURL extracts the object key from a public file URL.
// Returns ("", false) if the URL doesn't belong to this bucket.
func (c *Client) KeyFromURL(rawURL string) (string, bool) {
	for _, prefix := range c.URLPrefixes() {
		if strings.HasPrefix(rawURL, prefix) && len(rawURL) > len(prefix) {
			return rawURL[len(prefix):], true
		}
	}
	return "", false
}

// URLPrefixes lists the prefixes every object URL starts with, CDN first.
func (c *Client) URLPrefixes() []string {
	var out []string
	if c.publicURL != "" {
		out = append(out, c.publicURL+"/")
	}
	return append(out, c.endpoint+"/"+c.bucket+"/")
}

// Hosts returns the hostnames objects are served from.
func (c *Client) Hosts() []string {
	var hosts []string
	for _, p := range c.URLPrefixes() {
		if u, err := url.Parse(p); err == nil && u.Host != "" {
			hosts = append(hosts, u.Hostname())
		}
	}
	return hosts
}
