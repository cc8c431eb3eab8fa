package updl

// ObjectType is the closed set of supported scene primitives.
type ObjectType string

const (
	ObjectBox      ObjectType = "box"
	ObjectSphere   ObjectType = "sphere"
	ObjectCylinder ObjectType = "cylinder"
	ObjectPlane    ObjectType = "plane"
	ObjectText     ObjectType = "text"
	ObjectCircle   ObjectType = "circle"
	ObjectCone     ObjectType = "cone"
)

// LightType is the closed set of supported light kinds.
type LightType string

const (
	LightAmbient     LightType = "ambient"
	LightDirectional LightType = "directional"
	LightPoint       LightType = "point"
	LightSpot        LightType = "spot"
)

// DataType distinguishes quiz question nodes from answer nodes.
type DataType string

const (
	DataQuestion DataType = "question"
	DataAnswer   DataType = "answer"
)

// SceneObject is a resolved visual primitive.
type SceneObject struct {
	ID       string     `json:"id"`
	Name     string     `json:"name"`
	Type     ObjectType `json:"type"`
	Position Vec3       `json:"position"`
	Rotation Vec3       `json:"rotation"`
	Scale    Vec3       `json:"scale"`
	Color    string     `json:"color"`
	Width    float64    `json:"width"`
	Height   float64    `json:"height"`
	Depth    float64    `json:"depth"`
	Radius   float64    `json:"radius"`
	Value    string     `json:"value,omitempty"`
}

// SceneCamera is a resolved camera. Builders add a default one when a
// space resolves without any.
type SceneCamera struct {
	ID       string  `json:"id"`
	Name     string  `json:"name"`
	Type     string  `json:"type"`
	Position Vec3    `json:"position"`
	Rotation Vec3    `json:"rotation"`
	Scale    Vec3    `json:"scale"`
	FOV      float64 `json:"fov"`
	Near     float64 `json:"near"`
	Far      float64 `json:"far"`
	LookAt   *Vec3   `json:"lookAt,omitempty"`
}

// SceneLight is a resolved light source.
type SceneLight struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Type      LightType `json:"type"`
	Position  Vec3      `json:"position"`
	Color     string    `json:"color"`
	Intensity float64   `json:"intensity"`
	Distance  float64   `json:"distance,omitempty"`
	Decay     float64   `json:"decay,omitempty"`
}

// DataMetadata carries optional authoring metadata on a data node.
type DataMetadata struct {
	Difficulty int      `json:"difficulty,omitempty"`
	Tags       []string `json:"tags"`
}

// DataNode is a resolved quiz question or answer.
type DataNode struct {
	ID           string       `json:"id"`
	Name         string       `json:"name"`
	DataType     DataType     `json:"dataType"`
	Content      string       `json:"content"`
	IsCorrect    bool         `json:"isCorrect"`
	NextSpace    string       `json:"nextSpace,omitempty"`
	Objects      []string     `json:"objects"`
	EnablePoints bool         `json:"enablePoints"`
	PointsValue  float64      `json:"pointsValue"`
	Metadata     DataMetadata `json:"metadata"`
}

// Transform is an entity's local transform.
type Transform struct {
	Position Vec3 `json:"position"`
	Rotation Vec3 `json:"rotation"`
	Scale    Vec3 `json:"scale"`
}

// ComponentNode is a resolved component. Components attach to entities
// via edges; an entity owns its attached components.
type ComponentNode struct {
	ID               string                 `json:"id"`
	ComponentType    string                 `json:"componentType"`
	Primitive        string                 `json:"primitive,omitempty"`
	Color            string                 `json:"color,omitempty"`
	ScriptName       string                 `json:"scriptName,omitempty"`
	MaxCapacity      float64                `json:"maxCapacity"`
	FireRate         float64                `json:"fireRate"`
	Damage           float64                `json:"damage"`
	PricePerTon      float64                `json:"pricePerTon"`
	InteractionRange float64                `json:"interactionRange"`
	MaxYield         float64                `json:"maxYield"`
	AsteroidVolume   float64                `json:"asteroidVolume"`
	Hardness         float64                `json:"hardness"`
	CooldownTime     float64                `json:"cooldownTime"`
	Props            map[string]interface{} `json:"props"`
}

// ActionNode is a resolved action, attached to an event via an edge.
type ActionNode struct {
	ID         string                 `json:"id"`
	ActionType string                 `json:"actionType"`
	Target     string                 `json:"target,omitempty"`
	Params     map[string]interface{} `json:"params"`
}

// EventNode is a resolved event with its attached actions.
type EventNode struct {
	ID        string       `json:"id"`
	EventType string       `json:"eventType"`
	Source    string       `json:"source,omitempty"`
	Actions   []ActionNode `json:"actions"`
}

// EntityNode is a resolved entity with its attached components and events.
type EntityNode struct {
	ID         string          `json:"id"`
	Name       string          `json:"name"`
	EntityType string          `json:"entityType"`
	Transform  *Transform      `json:"transform,omitempty"`
	Tags       []string        `json:"tags"`
	Components []ComponentNode `json:"components"`
	Events     []EventNode     `json:"events"`
}

// UniversoNode is a resolved universo (network gateway) node. Its inputs
// are passed through untouched for template builders that understand them.
type UniversoNode struct {
	ID     string                 `json:"id"`
	Name   string                 `json:"name"`
	Inputs map[string]interface{} `json:"inputs"`
}

// LeadCollection configures the viewer-side lead form for a space.
type LeadCollection struct {
	CollectName  bool `json:"collectName"`
	CollectEmail bool `json:"collectEmail"`
	CollectPhone bool `json:"collectPhone"`
}

// Space is the resolved single-scene description consumed by a template
// builder. It is recomputed on every build and never mutated afterwards.
type Space struct {
	ID             string          `json:"id"`
	Name           string          `json:"name"`
	Objects        []SceneObject   `json:"objects"`
	Cameras        []SceneCamera   `json:"cameras"`
	Lights         []SceneLight    `json:"lights"`
	Datas          []DataNode      `json:"datas"`
	Entities       []EntityNode    `json:"entities"`
	Components     []ComponentNode `json:"components"`
	Events         []EventNode     `json:"events"`
	Actions        []ActionNode    `json:"actions"`
	Universo       []UniversoNode  `json:"universo"`
	ShowPoints     bool            `json:"showPoints"`
	LeadCollection LeadCollection  `json:"leadCollection"`
}

// Scene is one stage of a multi-scene chain.
type Scene struct {
	SpaceID        string        `json:"spaceId"`
	SpaceData      *Space        `json:"spaceData"`
	DataNodes      []DataNode    `json:"dataNodes"`
	ObjectNodes    []SceneObject `json:"objectNodes"`
	NextSceneID    string        `json:"nextSceneId,omitempty"`
	IsLast         bool          `json:"isLast"`
	Order          int           `json:"order"`
	IsResultsScene bool          `json:"isResultsScene"`
}

// MultiScene is an ordered chain of scenes resolved from connected space
// nodes. Scenes are ordered by Order ascending, starting at zero, and
// scenes[i].NextSceneID equals scenes[i+1].SpaceID for every non-last i.
type MultiScene struct {
	Scenes            []Scene `json:"scenes"`
	CurrentSceneIndex int     `json:"currentSceneIndex"`
	TotalScenes       int     `json:"totalScenes"`
	IsCompleted       bool    `json:"isCompleted"`
}

// ProcessResult is the processor output; exactly one field is set.
type ProcessResult struct {
	Space      *Space      `json:"updlSpace,omitempty"`
	MultiScene *MultiScene `json:"multiScene,omitempty"`
}
