package orrery

import (
	"fmt"

	"github.com/gekko3d/orrery/solarrt/rt/geom"
	"github.com/google/uuid"
)

type AssetId string

func makeAssetId() AssetId {
	return AssetId(uuid.NewString())
}

// AssetServer owns generated meshes. Spheres of equal radius and step are
// generated once and shared.
type AssetServer struct {
	meshes  map[AssetId]geom.Mesh
	spheres map[sphereKey]AssetId
}

type sphereKey struct {
	radius  float32
	stepDeg int
}

type AssetServerModule struct{}

func (AssetServerModule) Install(app *App, cmd *Commands) {
	cmd.AddResources(NewAssetServer())
}

func NewAssetServer() *AssetServer {
	return &AssetServer{
		meshes:  map[AssetId]geom.Mesh{},
		spheres: map[sphereKey]AssetId{},
	}
}

// LoadSphere returns the id of a sphere mesh, generating it on first use.
// A non-positive step means geom.DefaultStepDeg.
func (server *AssetServer) LoadSphere(radius float32, stepDeg int) AssetId {
	if stepDeg <= 0 {
		stepDeg = geom.DefaultStepDeg
	}
	key := sphereKey{radius: radius, stepDeg: stepDeg}
	if id, ok := server.spheres[key]; ok {
		return id
	}
	id := makeAssetId()
	server.meshes[id] = geom.GenerateSphereStep(radius, stepDeg)
	server.spheres[key] = id
	return id
}

func (server *AssetServer) LoadMesh(mesh geom.Mesh) (AssetId, error) {
	if err := mesh.Validate(); err != nil {
		return "", fmt.Errorf("load mesh: %w", err)
	}
	id := makeAssetId()
	server.meshes[id] = mesh
	return id, nil
}

func (server *AssetServer) Mesh(id AssetId) (geom.Mesh, bool) {
	m, ok := server.meshes[id]
	return m, ok
}

func (server *AssetServer) MeshCount() int {
	return len(server.meshes)
}
