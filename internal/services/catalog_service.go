package services

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/gosimple/slug"

	"github.com/baharkarakas/storefront-backend/internal/apperr"
	"github.com/baharkarakas/storefront-backend/internal/models"
	repo "github.com/baharkarakas/storefront-backend/internal/repository"
	"github.com/baharkarakas/storefront-backend/internal/storage"
)

// NewCollectionSize is how many of the newest products /newcollections shows.
const NewCollectionSize = 8

// Jobs runs background work; *worker.Pool satisfies it.
type Jobs interface {
	Submit(name string, fn func(context.Context) error) bool
}

// ImageUpload is an image file received with a product form.
type ImageUpload struct {
	Filename string
	Size     int64
	Body     io.Reader
}

type CatalogService struct {
	products  repo.Products
	images    storage.Images
	jobs      Jobs
	maxUpload int64
	log       *slog.Logger
}

func NewCatalogService(products repo.Products, images storage.Images, jobs Jobs, maxUpload int64, log *slog.Logger) *CatalogService {
	return &CatalogService{products: products, images: images, jobs: jobs, maxUpload: maxUpload, log: log}
}

func (s *CatalogService) List(ctx context.Context, q models.ProductQuery) (models.ProductPage, error) {
	items, total, err := s.products.List(ctx, q)
	if err != nil {
		return models.ProductPage{}, fmt.Errorf("list products: %w", err)
	}
	return models.ProductPage{Products: items, Total: total, Pages: models.PageCount(total, q.Limit)}, nil
}

func (s *CatalogService) Get(ctx context.Context, id string) (models.Product, error) {
	return s.products.GetByID(ctx, id)
}

// NewCollections returns the most recently created products, newest first.
func (s *CatalogService) NewCollections(ctx context.Context) ([]models.Product, error) {
	items, _, err := s.products.List(ctx, models.ProductQuery{
		Sort:  models.SortDate,
		Desc:  true,
		Page:  1,
		Limit: NewCollectionSize,
	})
	if err != nil {
		return nil, fmt.Errorf("list new collections: %w", err)
	}
	return items, nil
}

// Create stores the uploaded image and then the product. A product always
// needs an image.
func (s *CatalogService) Create(ctx context.Context, p models.Product, img *ImageUpload) (models.Product, error) {
	if img == nil {
		return models.Product{}, apperr.InvalidField("image", "product image is required")
	}
	staged, err := s.stageImage(img, p.Name)
	if err != nil {
		return models.Product{}, err
	}
	p.Image = storage.Ref(staged.key)
	if err := apperr.Invalid(p.Validate()); err != nil {
		return models.Product{}, err
	}
	if err := s.putImage(ctx, staged); err != nil {
		return models.Product{}, err
	}
	out, err := s.Insert(ctx, p)
	if err != nil {
		s.dropImage(p.Image)
		return models.Product{}, err
	}
	return out, nil
}

// Insert validates and stores a product whose image reference is already
// known. The importer uses it directly.
func (s *CatalogService) Insert(ctx context.Context, p models.Product) (models.Product, error) {
	if err := apperr.Invalid(p.Validate()); err != nil {
		return models.Product{}, err
	}
	p.Slug = slug.Make(p.Name)
	p.Ratings = nil
	p.AverageRating = 0
	out, err := s.products.Create(ctx, p)
	if err != nil {
		return models.Product{}, fmt.Errorf("create product: %w", err)
	}
	s.log.Info("product created", "product_id", out.ID, "name", out.Name)
	return out, nil
}

// Update applies the supplied fields, optionally replacing the image. The
// previous image is deleted in the background once the update is stored.
func (s *CatalogService) Update(ctx context.Context, id string, patch models.ProductPatch, img *ImageUpload) (models.Product, error) {
	cur, err := s.products.GetByID(ctx, id)
	if err != nil {
		return models.Product{}, err
	}
	next := patch.Apply(cur)

	var staged *stagedImage
	if img != nil {
		staged, err = s.stageImage(img, next.Name)
		if err != nil {
			return models.Product{}, err
		}
		next.Image = storage.Ref(staged.key)
	}
	if err := apperr.Invalid(next.Validate()); err != nil {
		return models.Product{}, err
	}
	next.Slug = slug.Make(next.Name)

	if staged != nil {
		if err := s.putImage(ctx, staged); err != nil {
			return models.Product{}, err
		}
	}
	out, err := s.products.Update(ctx, next)
	if err != nil {
		if staged != nil {
			s.dropImage(next.Image)
		}
		return models.Product{}, wrapCommit("update product", err)
	}
	if cur.Image != out.Image {
		s.dropImage(cur.Image)
	}
	s.log.Info("product updated", "product_id", out.ID)
	return out, nil
}

func (s *CatalogService) Delete(ctx context.Context, id string) error {
	p, err := s.products.Delete(ctx, id)
	if err != nil {
		return wrapCommit("delete product", err)
	}
	s.dropImage(p.Image)
	s.log.Info("product deleted", "product_id", id)
	return nil
}

type stagedImage struct {
	key         string
	contentType string
	size        int64
	body        io.Reader
}

// stageImage checks the upload and assigns its object key without writing
// anything yet.
func (s *CatalogService) stageImage(img *ImageUpload, productName string) (*stagedImage, error) {
	head := make([]byte, storage.SniffLen)
	n, err := io.ReadFull(img.Body, head)
	if err != nil && !errors.Is(err, io.ErrUnexpectedEOF) && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("read upload: %w", err)
	}
	head = head[:n]
	ext, ct, err := storage.CheckImage(img.Filename, img.Size, s.maxUpload, head)
	if err != nil {
		return nil, err
	}
	return &stagedImage{
		key:         storage.NewImageKey(productName, ext),
		contentType: ct,
		size:        img.Size,
		body:        io.MultiReader(bytes.NewReader(head), img.Body),
	}, nil
}

func (s *CatalogService) putImage(ctx context.Context, img *stagedImage) error {
	if err := s.images.Put(ctx, img.key, img.body, img.size, img.contentType); err != nil {
		return fmt.Errorf("store image: %w", err)
	}
	return nil
}

// dropImage schedules deletion of an image this service owns. References
// that do not point into the image store are left alone.
func (s *CatalogService) dropImage(ref string) {
	key, ok := storage.KeyFromRef(ref)
	if !ok {
		return
	}
	if !s.jobs.Submit("delete-image", func(ctx context.Context) error {
		return s.images.Delete(ctx, key)
	}) {
		s.log.Warn("image cleanup not scheduled", "key", key)
	}
}

// OpenImage streams a stored image by key.
func (s *CatalogService) OpenImage(ctx context.Context, key string) (storage.Object, error) {
	return s.images.Open(ctx, key)
}
