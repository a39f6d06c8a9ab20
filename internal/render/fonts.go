package render

import (
	"os"

	"github.com/rs/zerolog"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/font/opentype"
)

type faceKey struct {
	size float64
	bold bool
}

// fontSet hands out faces by size. When no TrueType file could be read the
// built-in 7x13 bitmap face is used for every size.
type fontSet struct {
	regular *opentype.Font
	bold    *opentype.Font
	faces   map[faceKey]font.Face
}

func loadFonts(regularPaths, boldPaths []string, logger zerolog.Logger) *fontSet {
	fs := &fontSet{faces: make(map[faceKey]font.Face)}
	fs.regular = firstFont(regularPaths, logger)
	fs.bold = firstFont(boldPaths, logger)
	if fs.bold == nil {
		fs.bold = fs.regular
	}

	if fs.regular == nil {
		logger.Warn().
			Strs("candidates", regularPaths).
			Msg("No usable font found, falling back to built-in face")
	}
	return fs
}

func firstFont(paths []string, logger zerolog.Logger) *opentype.Font {
	for _, p := range paths {
		if p == "" {
			continue
		}
		data, err := os.ReadFile(p)
		if err != nil {
			logger.Debug().Err(err).Str("path", p).Msg("Font not readable")
			continue
		}
		f, err := opentype.Parse(data)
		if err != nil {
			logger.Debug().Err(err).Str("path", p).Msg("Font not parseable")
			continue
		}
		logger.Debug().Str("path", p).Msg("Font loaded")
		return f
	}
	return nil
}

// Fallback reports whether the bitmap face is in use
func (fs *fontSet) Fallback() bool {
	return fs.regular == nil
}

// face returns a face of size points. Errors from the font engine degrade
// to the bitmap face rather than failing the card.
func (fs *fontSet) face(size float64, bold bool) font.Face {
	key := faceKey{size: size, bold: bold}
	if f, ok := fs.faces[key]; ok {
		return f
	}

	src := fs.regular
	if bold {
		src = fs.bold
	}

	var f font.Face = basicfont.Face7x13
	if src != nil {
		nf, err := opentype.NewFace(src, &opentype.FaceOptions{Size: size, DPI: 72, Hinting: font.HintingFull})
		if err == nil {
			f = nf
		}
	}
	fs.faces[key] = f
	return f
}

// Close releases the opentype faces
func (fs *fontSet) Close() {
	for _, f := range fs.faces {
		if f != basicfont.Face7x13 {
			_ = f.Close()
		}
	}
	fs.faces = make(map[faceKey]font.Face)
}
