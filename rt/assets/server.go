package assets

import (
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"io/fs"

	"github.com/gekko3d/orrery/rt/logging"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"
)

type AssetId string

type TextureAsset struct {
	Name   string
	Format string
	Image  *image.RGBA
}

func (t *TextureAsset) Width() uint32 {
	return uint32(t.Image.Bounds().Dx())
}

func (t *TextureAsset) Height() uint32 {
	return uint32(t.Image.Bounds().Dy())
}

type ShaderAsset struct {
	Name   string
	Source string
}

// Server owns CPU-side copies of textures and shader sources until they are
// uploaded.
type Server struct {
	textures map[AssetId]*TextureAsset
	shaders  map[AssetId]*ShaderAsset
	log      logging.Logger
}

func NewServer(log logging.Logger) *Server {
	return &Server{
		textures: make(map[AssetId]*TextureAsset),
		shaders:  make(map[AssetId]*ShaderAsset),
		log:      logging.OrNop(log),
	}
}

func makeAssetId() AssetId {
	return AssetId(uuid.NewString())
}

// LoadTexture decodes name from fsys and stores it as tightly packed RGBA.
func (s *Server) LoadTexture(fsys fs.FS, name string) (AssetId, error) {
	file, err := fsys.Open(name)
	if err != nil {
		return "", errors.Wrapf(err, "open texture %s", name)
	}
	defer file.Close()

	img, format, err := image.Decode(file)
	if err != nil {
		return "", errors.Wrapf(err, "decode texture %s", name)
	}
	rgba := ToRGBA(img)
	if rgba.Bounds().Empty() {
		return "", errors.Errorf("texture %s is empty", name)
	}

	id := makeAssetId()
	s.textures[id] = &TextureAsset{
		Name:   name,
		Format: format,
		Image:  rgba,
	}
	s.log.Debugf("loaded texture %s (%s, %dx%d)", name, format, rgba.Bounds().Dx(), rgba.Bounds().Dy())
	return id, nil
}

func (s *Server) Texture(id AssetId) (*TextureAsset, bool) {
	t, ok := s.textures[id]
	return t, ok
}

// ReleaseTexture drops the CPU copy, typically right after upload.
func (s *Server) ReleaseTexture(id AssetId) {
	delete(s.textures, id)
}

func (s *Server) TextureCount() int {
	return len(s.textures)
}

func (s *Server) LoadShader(fsys fs.FS, name string) (AssetId, error) {
	data, err := fs.ReadFile(fsys, name)
	if err != nil {
		return "", errors.Wrapf(err, "read shader %s", name)
	}
	id := makeAssetId()
	s.shaders[id] = &ShaderAsset{
		Name:   name,
		Source: string(data),
	}
	return id, nil
}

func (s *Server) Shader(id AssetId) (*ShaderAsset, bool) {
	sh, ok := s.shaders[id]
	return sh, ok
}
