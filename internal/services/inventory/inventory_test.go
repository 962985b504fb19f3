package inventory

import (
	"context"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/magabrotheeeer/digital-store/internal/cache"
	"github.com/magabrotheeeer/digital-store/internal/models"
	"github.com/magabrotheeeer/digital-store/internal/storage/media"
)

type RepositoryMock struct {
	mock.Mock
}

func (m *RepositoryMock) GetUserByUsername(ctx context.Context, username string) (*models.User, error) {
	args := m.Called(ctx, username)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *RepositoryMock) CreateStore(ctx context.Context, ownerUID string) (int, error) {
	args := m.Called(ctx, ownerUID)
	return args.Int(0), args.Error(1)
}

func (m *RepositoryMock) GetStoreByOwner(ctx context.Context, ownerUID string) (*models.Store, error) {
	args := m.Called(ctx, ownerUID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Store), args.Error(1)
}

func (m *RepositoryMock) CreateProduct(ctx context.Context, product models.Product) (int, error) {
	args := m.Called(ctx, product)
	return args.Int(0), args.Error(1)
}

func (m *RepositoryMock) ReadProduct(ctx context.Context, id int) (*models.Product, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Product), args.Error(1)
}

func (m *RepositoryMock) UpdateProduct(ctx context.Context, product models.Product, id int) (int, error) {
	args := m.Called(ctx, product, id)
	return args.Int(0), args.Error(1)
}

func (m *RepositoryMock) RemoveProduct(ctx context.Context, id int) (int, error) {
	args := m.Called(ctx, id)
	return args.Int(0), args.Error(1)
}

func (m *RepositoryMock) ListProductsByStore(ctx context.Context, storeID, limit, offset int) ([]*models.Product, error) {
	args := m.Called(ctx, storeID, limit, offset)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.Product), args.Error(1)
}

func (m *RepositoryMock) CreateFile(ctx context.Context, file models.File) (int, error) {
	args := m.Called(ctx, file)
	return args.Int(0), args.Error(1)
}

func (m *RepositoryMock) ReadFile(ctx context.Context, id int) (*models.File, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.File), args.Error(1)
}

func (m *RepositoryMock) UpdateFile(ctx context.Context, file models.File, id int) (int, error) {
	args := m.Called(ctx, file, id)
	return args.Int(0), args.Error(1)
}

func (m *RepositoryMock) UpdateFilePath(ctx context.Context, id int, path string) error {
	args := m.Called(ctx, id, path)
	return args.Error(0)
}

func (m *RepositoryMock) RemoveFile(ctx context.Context, id int) (int, error) {
	args := m.Called(ctx, id)
	return args.Int(0), args.Error(1)
}

func (m *RepositoryMock) ListFilesByStore(ctx context.Context, storeID, limit, offset int) ([]*models.File, error) {
	args := m.Called(ctx, storeID, limit, offset)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.File), args.Error(1)
}

func (m *RepositoryMock) ListFilesByProduct(ctx context.Context, productID int) ([]*models.File, error) {
	args := m.Called(ctx, productID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.File), args.Error(1)
}

func (m *RepositoryMock) CreateSubscription(ctx context.Context, sub models.Subscription) (int, error) {
	args := m.Called(ctx, sub)
	return args.Int(0), args.Error(1)
}

func (m *RepositoryMock) ReadSubscription(ctx context.Context, id int) (*models.Subscription, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Subscription), args.Error(1)
}

func (m *RepositoryMock) UpdateSubscription(ctx context.Context, sub models.Subscription, id int) (int, error) {
	args := m.Called(ctx, sub, id)
	return args.Int(0), args.Error(1)
}

func (m *RepositoryMock) RemoveSubscription(ctx context.Context, id int) (int, error) {
	args := m.Called(ctx, id)
	return args.Int(0), args.Error(1)
}

type CacheMock struct {
	mock.Mock
}

func (m *CacheMock) Invalidate(key string) error {
	args := m.Called(key)
	return args.Error(0)
}

func newNoopLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{}))
}

func TestNormalizeUploadName(t *testing.T) {
	explicit := "mysong2"
	withDot := "mysong2.mp3"

	tests := []struct {
		name             string
		explicitName     *string
		originalFilename string
		wantName         string
		wantRename       bool
		wantErr          error
	}{
		{
			name:             "без явного имени берется имя загруженного файла",
			explicitName:     nil,
			originalFilename: "mysong.mp3",
			wantName:         "mysong",
			wantRename:       false,
		},
		{
			name:             "пустое явное имя равносильно отсутствию",
			explicitName:     new(string),
			originalFilename: "lecture.pdf",
			wantName:         "lecture",
			wantRename:       false,
		},
		{
			name:             "явное имя требует переименования",
			explicitName:     &explicit,
			originalFilename: "mysong.mp3",
			wantName:         "mysong2",
			wantRename:       true,
		},
		{
			name:             "расширение в имени запрещено",
			explicitName:     &withDot,
			originalFilename: "mysong.mp3",
			wantErr:          ErrNameHasExtension,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			name, rename, err := normalizeUploadName(tt.explicitName, tt.originalFilename)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			require.NotNil(t, name)
			assert.Equal(t, tt.wantName, *name)
			assert.Equal(t, tt.wantRename, rename)
		})
	}
}

func TestNormalizePricing(t *testing.T) {
	price := 250

	tests := []struct {
		name          string
		price         *int
		isFree        bool
		productIsFree bool
		wantPrice     *int
		wantFree      bool
		wantErr       error
	}{
		{
			name:      "платный файл с ценой",
			price:     &price,
			wantPrice: &price,
		},
		{
			name:     "бесплатный файл теряет цену",
			price:    &price,
			isFree:   true,
			wantFree: true,
		},
		{
			name:          "файл бесплатного товара всегда бесплатен",
			price:         &price,
			productIsFree: true,
			wantFree:      true,
		},
		{
			name:    "платному файлу нужна цена",
			price:   nil,
			wantErr: ErrPriceRequired,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			gotPrice, gotFree, err := normalizePricing(tt.price, tt.isFree, tt.productIsFree)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantPrice, gotPrice)
			assert.Equal(t, tt.wantFree, gotFree)
		})
	}
}

func uploadFixtures(repo *RepositoryMock) {
	repo.On("GetUserByUsername", mock.Anything, "owner").
		Return(&models.User{UID: "owner-uid", Username: "owner"}, nil)
	repo.On("GetStoreByOwner", mock.Anything, "owner-uid").
		Return(&models.Store{ID: 1, OwnerUID: "owner-uid"}, nil)
	price := 500
	repo.On("ReadProduct", mock.Anything, 7).
		Return(&models.Product{ID: 7, StoreID: 1, Price: &price}, nil)
}

func TestUploadFile_ExplicitNameRenamesPayload(t *testing.T) {
	dir := t.TempDir()
	store, err := media.New(dir, "/media")
	require.NoError(t, err)

	repo := new(RepositoryMock)
	uploadFixtures(repo)
	repo.On("CreateFile", mock.Anything, mock.MatchedBy(func(f models.File) bool {
		return f.Name != nil && *f.Name == "mysong2" && f.ProductID == 7
	})).Return(11, nil).Once()
	var savedPath string
	repo.On("UpdateFilePath", mock.Anything, 11, mock.MatchedBy(func(p string) bool {
		savedPath = p
		return strings.HasSuffix(p, "mysong2.mp3")
	})).Return(nil).Once()

	svc := New(repo, store, nil, newNoopLogger())

	price := 300
	name := "mysong2"
	id, err := svc.UploadFile(context.Background(), "owner", UploadInput{
		Name:             &name,
		Payload:          strings.NewReader("audio-bytes"),
		OriginalFilename: "mysong.mp3",
		Price:            &price,
		ProductID:        7,
	})

	require.NoError(t, err)
	assert.Equal(t, 11, id)
	repo.AssertExpectations(t)

	// Содержимое лежит под заданным именем с расширением загруженного файла.
	data, err := os.ReadFile(filepath.Join(dir, filepath.Base(savedPath)))
	require.NoError(t, err)
	assert.Equal(t, "audio-bytes", string(data))
}

func TestUploadFile_DerivedNameKeepsStoredPayload(t *testing.T) {
	dir := t.TempDir()
	store, err := media.New(dir, "/media")
	require.NoError(t, err)

	repo := new(RepositoryMock)
	uploadFixtures(repo)
	repo.On("CreateFile", mock.Anything, mock.MatchedBy(func(f models.File) bool {
		return f.Name != nil && *f.Name == "lecture" && f.IsFree
	})).Return(12, nil).Once()

	svc := New(repo, store, nil, newNoopLogger())

	id, err := svc.UploadFile(context.Background(), "owner", UploadInput{
		Payload:          strings.NewReader("pdf-bytes"),
		OriginalFilename: "lecture.pdf",
		IsFree:           true,
		ProductID:        7,
	})

	require.NoError(t, err)
	assert.Equal(t, 12, id)
	// Без явного имени содержимое остаётся под случайным именем хранилища.
	repo.AssertNotCalled(t, "UpdateFilePath", mock.Anything, mock.Anything, mock.Anything)
}

func TestUploadFile_Rejections(t *testing.T) {
	dir := t.TempDir()
	store, err := media.New(dir, "/media")
	require.NoError(t, err)

	repo := new(RepositoryMock)
	uploadFixtures(repo)
	svc := New(repo, store, nil, newNoopLogger())

	t.Run("недопустимое расширение", func(t *testing.T) {
		_, err := svc.UploadFile(context.Background(), "owner", UploadInput{
			Payload:          strings.NewReader("x"),
			OriginalFilename: "malware.exe",
			IsFree:           true,
			ProductID:        7,
		})
		assert.ErrorIs(t, err, ErrBadExtension)
	})

	t.Run("расширение в имени", func(t *testing.T) {
		name := "song.mp3"
		_, err := svc.UploadFile(context.Background(), "owner", UploadInput{
			Name:             &name,
			Payload:          strings.NewReader("x"),
			OriginalFilename: "song.mp3",
			IsFree:           true,
			ProductID:        7,
		})
		assert.ErrorIs(t, err, ErrNameHasExtension)
	})

	t.Run("платный файл без цены", func(t *testing.T) {
		_, err := svc.UploadFile(context.Background(), "owner", UploadInput{
			Payload:          strings.NewReader("x"),
			OriginalFilename: "song.mp3",
			ProductID:        7,
		})
		assert.ErrorIs(t, err, ErrPriceRequired)
	})

	// Хранилище должно остаться пустым: отклонённые загрузки не пишут файлов.
	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestUploadFile_InvalidatesProductCard(t *testing.T) {
	store, err := media.New(t.TempDir(), "/media")
	require.NoError(t, err)

	repo := new(RepositoryMock)
	uploadFixtures(repo)
	repo.On("CreateFile", mock.Anything, mock.Anything).Return(13, nil).Once()

	// Карточка товара кеширует ссылки на файлы, новый файл обязан её сбросить.
	cacheMock := new(CacheMock)
	cacheMock.On("Invalidate", cache.ProductKey(7)).Return(nil).Once()

	svc := New(repo, store, cacheMock, newNoopLogger())

	_, err = svc.UploadFile(context.Background(), "owner", UploadInput{
		Payload:          strings.NewReader("pdf-bytes"),
		OriginalFilename: "lecture.pdf",
		IsFree:           true,
		ProductID:        7,
	})

	require.NoError(t, err)
	cacheMock.AssertExpectations(t)
}

func TestRemoveFile_InvalidatesProductCard(t *testing.T) {
	store, err := media.New(t.TempDir(), "/media")
	require.NoError(t, err)

	repo := new(RepositoryMock)
	uploadFixtures(repo)
	repo.On("ReadFile", mock.Anything, 5).
		Return(&models.File{ID: 5, Path: "gone.mp3", IsFree: true, ProductID: 7}, nil)
	repo.On("RemoveFile", mock.Anything, 5).Return(1, nil).Once()

	cacheMock := new(CacheMock)
	cacheMock.On("Invalidate", cache.ProductKey(7)).Return(nil).Once()

	svc := New(repo, store, cacheMock, newNoopLogger())

	require.NoError(t, svc.RemoveFile(context.Background(), "owner", 5))
	cacheMock.AssertExpectations(t)
}

func TestUpdateFile_MovedFileInvalidatesBothProducts(t *testing.T) {
	store, err := media.New(t.TempDir(), "/media")
	require.NoError(t, err)

	repo := new(RepositoryMock)
	uploadFixtures(repo)
	repo.On("ReadProduct", mock.Anything, 8).
		Return(&models.Product{ID: 8, StoreID: 1, IsFree: true}, nil)
	repo.On("ReadFile", mock.Anything, 5).
		Return(&models.File{ID: 5, Path: "old.mp3", IsFree: true, ProductID: 7}, nil)
	repo.On("UpdateFile", mock.Anything, mock.Anything, 5).Return(1, nil).Once()

	// Файл переехал к другому товару: устаревают карточки обоих товаров.
	cacheMock := new(CacheMock)
	cacheMock.On("Invalidate", cache.ProductKey(8)).Return(nil).Once()
	cacheMock.On("Invalidate", cache.ProductKey(7)).Return(nil).Once()

	svc := New(repo, store, cacheMock, newNoopLogger())

	err = svc.UpdateFile(context.Background(), "owner", 5, UploadInput{
		Payload:          strings.NewReader("new-bytes"),
		OriginalFilename: "track.mp3",
		IsFree:           true,
		ProductID:        8,
	})

	require.NoError(t, err)
	cacheMock.AssertExpectations(t)
}
