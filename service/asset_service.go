package services

import (
	"context"
	"fmt"
	"path/filepath"
	"regexp"
	"sort"
	"strings"

	model "github.com/Itish41/Poligap/models"
	"github.com/Itish41/Poligap/repository"
	"github.com/Itish41/Poligap/storage"

	"github.com/lib/pq"
	"github.com/rs/zerolog/log"
	"github.com/samber/lo"
)

const DefaultMaxUploadBytes int64 = 25 << 20

// AssetStore persists asset metadata.
type AssetStore interface {
	Create(ctx context.Context, asset *model.Asset) error
	Get(ctx context.Context, id string) (*model.Asset, error)
	List(ctx context.Context, f repository.AssetFilter) ([]model.Asset, error)
	UpdateTags(ctx context.Context, id string, tags []string) error
	Delete(ctx context.Context, id string) error
}

// AssetUpload is a file posted to the library.
type AssetUpload struct {
	FileName    string
	ContentType string
	Data        []byte
	Category    string
	Tags        []string
}

// AssetInput registers an asset that already lives at an external URL.
type AssetInput struct {
	Name     string   `json:"name"`
	URL      string   `json:"url"`
	MimeType string   `json:"mimetype"`
	Size     int64    `json:"size"`
	Category string   `json:"category"`
	Tags     []string `json:"tags"`
}

// TagUpdate adds and removes tags on one asset.
type TagUpdate struct {
	AssetID string   `json:"assetId"`
	Add     []string `json:"add"`
	Remove  []string `json:"remove"`
}

type AssetService struct {
	store          AssetStore
	objects        storage.ObjectStore
	indexer        Indexer
	maxUploadBytes int64
}

// NewAssetService wires the asset store. objects may be nil, in which case
// uploads fail with ErrStorageUnavailable.
func NewAssetService(store AssetStore, objects storage.ObjectStore, indexer Indexer, maxUploadBytes int64) *AssetService {
	if maxUploadBytes <= 0 {
		maxUploadBytes = DefaultMaxUploadBytes
	}
	return &AssetService{store: store, objects: objects, indexer: indexer, maxUploadBytes: maxUploadBytes}
}

func (s *AssetService) MaxUploadBytes() int64 { return s.maxUploadBytes }

var unsafeKeyChars = regexp.MustCompile(`[^A-Za-z0-9._-]+`)

// objectKey is assets/<uuid>-<sanitized base name>.
func objectKey(id, fileName string) string {
	base := unsafeKeyChars.ReplaceAllString(filepath.Base(fileName), "_")
	return fmt.Sprintf("assets/%s-%s", id, strings.Trim(base, "_"))
}

func (s *AssetService) Upload(ctx context.Context, up AssetUpload) (*model.Asset, error) {
	if up.FileName == "" || len(up.Data) == 0 {
		return nil, invalid("No file provided")
	}
	if int64(len(up.Data)) > s.maxUploadBytes {
		return nil, invalid(fmt.Sprintf("File exceeds the %d MB upload limit", s.maxUploadBytes>>20))
	}
	if s.objects == nil {
		return nil, ErrStorageUnavailable
	}

	id := newIDFunc()
	key := objectKey(id, up.FileName)
	contentType := up.ContentType
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	url, err := s.objects.Put(ctx, key, up.Data, contentType)
	if err != nil {
		log.Error().Err(err).Str("key", key).Msg("[AssetService] failed to store object")
		return nil, fmt.Errorf("failed to store file: %w", err)
	}

	now := nowFunc().UTC()
	asset := &model.Asset{
		ID:           id,
		Name:         filepath.Base(up.FileName),
		OriginalName: up.FileName,
		MimeType:     contentType,
		Size:         int64(len(up.Data)),
		Tags:         pq.StringArray(normalizeTags(up.Tags)),
		Category:     up.Category,
		StorageKey:   key,
		URL:          url,
		UploadDate:   now,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := s.store.Create(ctx, asset); err != nil {
		if derr := s.objects.Delete(ctx, key); derr != nil {
			log.Warn().Err(derr).Str("key", key).Msg("[AssetService] failed to remove orphaned object")
		}
		return nil, fmt.Errorf("failed to save asset: %w", err)
	}
	log.Info().Str("id", asset.ID).Str("name", asset.Name).Int64("size", asset.Size).Msg("[AssetService] asset uploaded")
	s.index(ctx, asset)
	return asset, nil
}

func (s *AssetService) CreateAsset(ctx context.Context, in AssetInput) (*model.Asset, error) {
	name := strings.TrimSpace(in.Name)
	if name == "" {
		return nil, invalid("name is required")
	}
	if strings.TrimSpace(in.URL) == "" {
		return nil, invalid("url is required")
	}
	now := nowFunc().UTC()
	asset := &model.Asset{
		ID:           newIDFunc(),
		Name:         name,
		OriginalName: name,
		MimeType:     in.MimeType,
		Size:         in.Size,
		Tags:         pq.StringArray(normalizeTags(in.Tags)),
		Category:     in.Category,
		URL:          in.URL,
		UploadDate:   now,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := s.store.Create(ctx, asset); err != nil {
		return nil, fmt.Errorf("failed to save asset: %w", err)
	}
	s.index(ctx, asset)
	return asset, nil
}

func (s *AssetService) ListAssets(ctx context.Context, f repository.AssetFilter) ([]model.Asset, error) {
	f.Tag = strings.ToLower(strings.TrimSpace(f.Tag))
	assets, err := s.store.List(ctx, f)
	if err != nil {
		return nil, fmt.Errorf("failed to list assets: %w", err)
	}
	if assets == nil {
		assets = []model.Asset{}
	}
	return assets, nil
}

// DeleteAsset removes the row. The stored object and search document are
// removed best-effort afterwards.
func (s *AssetService) DeleteAsset(ctx context.Context, id string) error {
	asset, err := s.store.Get(ctx, id)
	if err != nil {
		return err
	}
	if err := s.store.Delete(ctx, id); err != nil {
		return err
	}
	if asset.StorageKey != "" && s.objects != nil {
		if err := s.objects.Delete(ctx, asset.StorageKey); err != nil {
			log.Warn().Err(err).Str("key", asset.StorageKey).Msg("[AssetService] failed to delete stored object")
		}
	}
	if s.indexer != nil {
		s.indexer.Delete(ctx, AssetIndex, id)
	}
	log.Info().Str("id", id).Msg("[AssetService] asset deleted")
	return nil
}

func (s *AssetService) UpdateTags(ctx context.Context, upd TagUpdate) (*model.Asset, error) {
	if upd.AssetID == "" {
		return nil, invalid("assetId is required")
	}
	if len(upd.Add) == 0 && len(upd.Remove) == 0 {
		return nil, invalid("No tags to add or remove")
	}
	asset, err := s.store.Get(ctx, upd.AssetID)
	if err != nil {
		return nil, err
	}

	tags := ApplyTagChanges(asset.Tags, upd.Add, upd.Remove)
	if err := s.store.UpdateTags(ctx, asset.ID, tags); err != nil {
		return nil, fmt.Errorf("failed to update tags: %w", err)
	}
	asset.Tags = pq.StringArray(tags)
	asset.UpdatedAt = nowFunc().UTC()
	s.index(ctx, asset)
	return asset, nil
}

// ApplyTagChanges returns current plus add minus remove, lower-cased,
// deduplicated and sorted.
func ApplyTagChanges(current, add, remove []string) []string {
	merged := normalizeTags(append(append([]string{}, current...), add...))
	return lo.Without(merged, normalizeTags(remove)...)
}

func normalizeTags(tags []string) []string {
	out := lo.Uniq(lo.FilterMap(tags, func(t string, _ int) (string, bool) {
		t = strings.ToLower(strings.TrimSpace(t))
		return t, t != ""
	}))
	sort.Strings(out)
	return out
}

func (s *AssetService) index(ctx context.Context, asset *model.Asset) {
	if s.indexer != nil {
		s.indexer.Index(ctx, AssetIndex, asset.ID, assetDocument(asset))
	}
}
