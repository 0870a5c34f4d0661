package prefabs

import (
	"image/color"
	"strconv"
	"strings"

	"github.com/rotisserie/eris"
	"gopkg.in/yaml.v3"
)

// SceneSpec lists the resources and entity templates a scene is built from.
type SceneSpec struct {
	Name      string         `yaml:"name"`
	Materials []MaterialSpec `yaml:"materials"`
	Meshes    []MeshSpec     `yaml:"meshes"`
	Templates []TemplateSpec `yaml:"templates"`
}

// MaterialSpec describes a solid color texture.
type MaterialSpec struct {
	Name  string    `yaml:"name"`
	Color YAMLColor `yaml:"color"`
	Size  [2]int    `yaml:"size"`
}

type MeshSpec struct {
	Name   string `yaml:"name"`
	Width  int    `yaml:"width"`
	Height int    `yaml:"height"`
}

type TemplateSpec struct {
	Name     string    `yaml:"name"`
	Material string    `yaml:"material"`
	Mesh     string    `yaml:"mesh"`
	Order    uint32    `yaml:"order"`
	Body     *BodySpec `yaml:"body"`
	Script   string    `yaml:"script"`
}

type BodySpec struct {
	Mass       float64 `yaml:"mass"`
	Friction   float64 `yaml:"friction"`
	Elasticity float64 `yaml:"elasticity"`
	Static     bool    `yaml:"static"`
}

func LoadSpec[T any](filename string) (T, error) {
	var zero T
	data, err := Load(filename)
	if err != nil {
		return zero, eris.Wrapf(err, "prefabs: load %s", filename)
	}

	var spec T
	if err := yaml.Unmarshal(data, &spec); err != nil {
		return zero, eris.Wrapf(err, "prefabs: unmarshal %s", filename)
	}

	return spec, nil
}

func LoadSceneSpec(filename string) (*SceneSpec, error) {
	spec, err := LoadSpec[SceneSpec](filename)
	if err != nil {
		return nil, err
	}
	return &spec, nil
}

// Template returns the template called name.
func (s *SceneSpec) Template(name string) (TemplateSpec, bool) {
	for _, t := range s.Templates {
		if t.Name == name {
			return t, true
		}
	}
	return TemplateSpec{}, false
}

// YAMLColor decodes "#rrggbb" or "#rrggbbaa".
type YAMLColor struct {
	color.RGBA
}

func (c *YAMLColor) UnmarshalYAML(value *yaml.Node) error {
	if value.Kind != yaml.ScalarNode {
		return eris.New("prefabs: color must be a string")
	}

	s := strings.TrimPrefix(value.Value, "#")
	if len(s) != 6 && len(s) != 8 {
		return eris.Errorf("prefabs: invalid color %q", value.Value)
	}

	var ch [4]uint8
	ch[3] = 255
	for i := 0; i < len(s)/2; i++ {
		v, err := strconv.ParseUint(s[i*2:i*2+2], 16, 8)
		if err != nil {
			return eris.Errorf("prefabs: invalid color %q", value.Value)
		}
		ch[i] = uint8(v)
	}

	c.RGBA = color.RGBA{R: ch[0], G: ch[1], B: ch[2], A: ch[3]}
	return nil
}
