package updl

import (
	"errors"

	"github.com/sirupsen/logrus"
)

// ErrNoSpace is returned when a flow that requires a space node has none.
var ErrNoSpace = errors.New("no space node found in flow")

// Processor resolves a raw flow graph into a single space description or
// a multi-scene chain. It holds no per-flow state; one instance is safe
// for concurrent use.
type Processor struct {
	log *logrus.Entry
}

// NewProcessor creates a processor logging through the given logger.
func NewProcessor(logger *logrus.Logger) *Processor {
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	return &Processor{log: logger.WithField("component", "updl")}
}

// ProcessFlow parses raw flow JSON and resolves it.
func (p *Processor) ProcessFlow(raw []byte) (*ProcessResult, error) {
	fg, err := ParseFlow(raw)
	if err != nil {
		return nil, err
	}
	return p.Process(fg.Nodes, fg.Edges)
}

// Process resolves a node/edge graph. Exactly one of the result fields is
// populated: MultiScene when more than one connected space node exists,
// Space otherwise. A flow without any space node is a fatal error.
func (p *Processor) Process(nodes []FlowNode, edges []FlowEdge) (*ProcessResult, error) {
	kinds := make(map[string]NodeKind, len(nodes))
	buckets := make(map[NodeKind][]FlowNode)
	for _, n := range nodes {
		k := ClassifyNode(n)
		kinds[n.ID] = k
		buckets[k] = append(buckets[k], n)
	}

	spaces := buckets[KindSpace]
	if len(spaces) > 1 {
		if ms := p.analyzeSpaceChain(nodes, edges, kinds, buckets); ms != nil {
			return &ProcessResult{MultiScene: ms}, nil
		}
		p.log.Warn("multi-space flow has no chain start; falling back to single-space resolution")
	}
	if len(spaces) == 0 {
		return nil, ErrNoSpace
	}

	space := p.buildSpace(spaces[0], edges, kinds, buckets)
	return &ProcessResult{Space: space}, nil
}

// analyzeSpaceChain walks the directed chain of space nodes and resolves
// one scene per visited space. Returns nil when no start space exists
// (every space has an incoming space edge, i.e. a pure cycle).
func (p *Processor) analyzeSpaceChain(nodes []FlowNode, edges []FlowEdge, kinds map[string]NodeKind, buckets map[NodeKind][]FlowNode) *MultiScene {
	spaces := buckets[KindSpace]
	spaceByID := make(map[string]FlowNode, len(spaces))
	for _, s := range spaces {
		spaceByID[s.ID] = s
	}

	// Adjacency restricted to edges whose both endpoints are spaces.
	next := make(map[string]string)
	incoming := make(map[string]bool)
	for _, e := range edges {
		if kinds[e.Source] != KindSpace || kinds[e.Target] != KindSpace {
			continue
		}
		if prev, ok := next[e.Source]; ok {
			p.log.WithFields(logrus.Fields{
				"space":   e.Source,
				"kept":    prev,
				"ignored": e.Target,
			}).Warn("space has multiple outgoing links; keeping the first")
			continue
		}
		next[e.Source] = e.Target
		incoming[e.Target] = true
	}

	// A start space is one nothing points at; ties break by node order.
	start := ""
	for _, s := range spaces {
		if !incoming[s.ID] {
			start = s.ID
			break
		}
	}
	if start == "" {
		return nil
	}

	visited := make(map[string]bool)
	var scenes []Scene
	for id := start; id != ""; id = next[id] {
		if visited[id] {
			p.log.WithField("space", id).Warn("cycle detected in space chain; truncating walk")
			break
		}
		visited[id] = true
		scenes = append(scenes, p.buildChainScene(spaceByID[id], nodes, edges, kinds))
	}

	for i := range scenes {
		scenes[i].Order = i
		if i+1 < len(scenes) {
			scenes[i].NextSceneID = scenes[i+1].SpaceID
		} else {
			scenes[i].IsLast = true
		}
	}
	if len(scenes) > 0 {
		last := &scenes[len(scenes)-1]
		last.IsResultsScene = last.SpaceData.ShowPoints && len(last.DataNodes) == 0
	}

	return &MultiScene{
		Scenes:      scenes,
		TotalScenes: len(scenes),
	}
}

// buildChainScene resolves the data, object and entity content belonging
// to one space of a multi-scene chain.
func (p *Processor) buildChainScene(space FlowNode, nodes []FlowNode, edges []FlowEdge, kinds map[string]NodeKind) Scene {
	// Data nodes wired directly into this space.
	dataSet := make(map[string]bool)
	for _, e := range edges {
		if e.Target == space.ID && kinds[e.Source] == KindData {
			dataSet[e.Source] = true
		}
	}

	// One extra hop over data-to-data edges picks up answers linked to
	// the directly connected questions. Deliberately not transitive:
	// deeper chains are out of contract.
	direct := make(map[string]bool, len(dataSet))
	for id := range dataSet {
		direct[id] = true
	}
	for _, e := range edges {
		if kinds[e.Source] != KindData || kinds[e.Target] != KindData {
			continue
		}
		if direct[e.Source] {
			dataSet[e.Target] = true
		}
		if direct[e.Target] {
			dataSet[e.Source] = true
		}
	}

	// Objects hang off data nodes in either edge direction.
	objectSet := make(map[string]bool)
	objectLinks := make(map[string][]string)
	for _, e := range edges {
		if dataSet[e.Source] && kinds[e.Target] == KindObject {
			objectSet[e.Target] = true
			objectLinks[e.Source] = append(objectLinks[e.Source], e.Target)
		}
		if dataSet[e.Target] && kinds[e.Source] == KindObject {
			objectSet[e.Source] = true
			objectLinks[e.Target] = append(objectLinks[e.Target], e.Source)
		}
	}

	// Entities and components reachable from the space or its data nodes.
	scope := func(id string) bool { return id == space.ID || dataSet[id] }
	entitySet := make(map[string]bool)
	componentSet := make(map[string]bool)
	for _, e := range edges {
		switch {
		case scope(e.Source) && kinds[e.Target] == KindEntity:
			entitySet[e.Target] = true
		case scope(e.Target) && kinds[e.Source] == KindEntity:
			entitySet[e.Source] = true
		case scope(e.Source) && kinds[e.Target] == KindComponent:
			componentSet[e.Target] = true
		case scope(e.Target) && kinds[e.Source] == KindComponent:
			componentSet[e.Source] = true
		}
	}
	// Components wired straight into one of the scene's entities.
	for _, e := range edges {
		if kinds[e.Source] == KindComponent && entitySet[e.Target] {
			componentSet[e.Source] = true
		}
		if kinds[e.Target] == KindComponent && entitySet[e.Source] {
			componentSet[e.Target] = true
		}
	}

	var dataNodes []DataNode
	var objectNodes []SceneObject
	var entities []EntityNode
	var components []ComponentNode
	nodeByID := make(map[string]FlowNode, len(nodes))
	for _, n := range nodes {
		nodeByID[n.ID] = n
		switch {
		case dataSet[n.ID]:
			dataNodes = append(dataNodes, p.convertData(n, objectLinks[n.ID]))
		case objectSet[n.ID]:
			objectNodes = append(objectNodes, p.convertObject(n))
		case entitySet[n.ID]:
			entities = append(entities, p.convertEntity(n))
		case componentSet[n.ID]:
			components = append(components, p.convertComponent(n))
		}
	}

	p.attach(&entities, &components, nil, nil, edges)

	// Entity + render-component pairs double as implicit visuals.
	for _, e := range edges {
		if !componentSet[e.Source] || !entitySet[e.Target] {
			continue
		}
		comp := nodeByID[e.Source]
		if p.convertComponent(comp).ComponentType != "render" {
			continue
		}
		objectNodes = append(objectNodes, p.syntheticObject(nodeByID[e.Target], comp))
	}

	spaceData := p.spaceShell(space)
	spaceData.Objects = append(spaceData.Objects, objectNodes...)
	spaceData.Datas = append(spaceData.Datas, dataNodes...)
	spaceData.Entities = append(spaceData.Entities, entities...)
	spaceData.Components = append(spaceData.Components, components...)

	return Scene{
		SpaceID:     space.ID,
		SpaceData:   spaceData,
		DataNodes:   dataNodes,
		ObjectNodes: objectNodes,
	}
}

// buildSpace resolves the whole flow against a single space node.
func (p *Processor) buildSpace(space FlowNode, edges []FlowEdge, kinds map[string]NodeKind, buckets map[NodeKind][]FlowNode) *Space {
	out := p.spaceShell(space)

	// Object links feed data-node answer promotion.
	objectLinks := make(map[string][]string)
	for _, e := range edges {
		if kinds[e.Source] == KindData && kinds[e.Target] == KindObject {
			objectLinks[e.Source] = append(objectLinks[e.Source], e.Target)
		}
		if kinds[e.Target] == KindData && kinds[e.Source] == KindObject {
			objectLinks[e.Target] = append(objectLinks[e.Target], e.Source)
		}
	}

	for _, n := range buckets[KindObject] {
		out.Objects = append(out.Objects, p.convertObject(n))
	}
	for _, n := range buckets[KindCamera] {
		out.Cameras = append(out.Cameras, p.convertCamera(n))
	}
	for _, n := range buckets[KindLight] {
		out.Lights = append(out.Lights, p.convertLight(n))
	}
	for _, n := range buckets[KindData] {
		out.Datas = append(out.Datas, p.convertData(n, objectLinks[n.ID]))
	}
	entities := make([]EntityNode, 0, len(buckets[KindEntity]))
	for _, n := range buckets[KindEntity] {
		entities = append(entities, p.convertEntity(n))
	}
	components := make([]ComponentNode, 0, len(buckets[KindComponent]))
	for _, n := range buckets[KindComponent] {
		components = append(components, p.convertComponent(n))
	}
	events := make([]EventNode, 0, len(buckets[KindEvent]))
	for _, n := range buckets[KindEvent] {
		events = append(events, p.convertEvent(n))
	}
	actions := make([]ActionNode, 0, len(buckets[KindAction]))
	for _, n := range buckets[KindAction] {
		actions = append(actions, p.convertAction(n))
	}
	for _, n := range buckets[KindUniverso] {
		out.Universo = append(out.Universo, UniversoNode{
			ID:     n.ID,
			Name:   nodeName(n),
			Inputs: n.Data.Inputs,
		})
	}

	p.attach(&entities, &components, &events, &actions, edges)

	out.Entities = append(out.Entities, entities...)
	out.Components = append(out.Components, components...)
	out.Events = append(out.Events, events...)
	out.Actions = append(out.Actions, actions...)
	return out
}

// attach wires components and events onto entities and actions onto
// events in one pass over the edges. Either edge orientation attaches.
// Nested chains (component of component, event of event) are out of
// contract and intentionally not resolved.
func (p *Processor) attach(entities *[]EntityNode, components *[]ComponentNode, events *[]EventNode, actions *[]ActionNode, edges []FlowEdge) {
	entityIdx := make(map[string]int)
	for i, e := range *entities {
		entityIdx[e.ID] = i
	}
	componentIdx := make(map[string]int)
	for i, c := range *components {
		componentIdx[c.ID] = i
	}
	eventIdx := make(map[string]int)
	actionIdx := make(map[string]int)
	if events != nil {
		for i, e := range *events {
			eventIdx[e.ID] = i
		}
	}
	if actions != nil {
		for i, a := range *actions {
			actionIdx[a.ID] = i
		}
	}

	for _, e := range edges {
		if ci, ok := componentIdx[e.Source]; ok {
			if ei, ok := entityIdx[e.Target]; ok {
				(*entities)[ei].Components = append((*entities)[ei].Components, (*components)[ci])
				continue
			}
		}
		if ci, ok := componentIdx[e.Target]; ok {
			if ei, ok := entityIdx[e.Source]; ok {
				(*entities)[ei].Components = append((*entities)[ei].Components, (*components)[ci])
				continue
			}
		}
		if events == nil {
			continue
		}
		if vi, ok := eventIdx[e.Source]; ok {
			if ei, ok := entityIdx[e.Target]; ok {
				(*entities)[ei].Events = append((*entities)[ei].Events, (*events)[vi])
				continue
			}
		}
		if vi, ok := eventIdx[e.Target]; ok {
			if ei, ok := entityIdx[e.Source]; ok {
				(*entities)[ei].Events = append((*entities)[ei].Events, (*events)[vi])
				continue
			}
		}
		if actions == nil {
			continue
		}
		if ai, ok := actionIdx[e.Source]; ok {
			if vi, ok := eventIdx[e.Target]; ok {
				(*events)[vi].Actions = append((*events)[vi].Actions, (*actions)[ai])
				continue
			}
		}
		if ai, ok := actionIdx[e.Target]; ok {
			if vi, ok := eventIdx[e.Source]; ok {
				(*events)[vi].Actions = append((*events)[vi].Actions, (*actions)[ai])
			}
		}
	}
}

func (p *Processor) spaceShell(space FlowNode) *Space {
	inputs := space.Data.Inputs
	return &Space{
		ID:         space.ID,
		Name:       nodeName(space),
		Objects:    []SceneObject{},
		Cameras:    []SceneCamera{},
		Lights:     []SceneLight{},
		Datas:      []DataNode{},
		Entities:   []EntityNode{},
		Components: []ComponentNode{},
		Events:     []EventNode{},
		Actions:    []ActionNode{},
		Universo:   []UniversoNode{},
		ShowPoints: boolField(inputs, "showPoints", false),
		LeadCollection: LeadCollection{
			CollectName:  boolField(inputs, "collectName", false),
			CollectEmail: boolField(inputs, "collectEmail", false),
			CollectPhone: boolField(inputs, "collectPhone", false),
		},
	}
}

func (p *Processor) convertObject(n FlowNode) SceneObject {
	inputs := n.Data.Inputs
	return SceneObject{
		ID:       n.ID,
		Name:     nodeName(n),
		Type:     ObjectType(strField(inputs, "objectType", strField(inputs, "type", string(ObjectBox)))),
		Position: vec3Field(inputs, "position", Vec3{X: 0, Y: 0.5, Z: 0}),
		Rotation: vec3Field(inputs, "rotation", Vec3{}),
		Scale:    scaleField(inputs, "scale", Vec3{X: 1, Y: 1, Z: 1}),
		Color:    colorField(inputs, "color", DefaultObjectColor),
		Width:    numField(inputs, "width", 1),
		Height:   numField(inputs, "height", 1),
		Depth:    numField(inputs, "depth", 1),
		Radius:   numField(inputs, "radius", 1),
		Value:    strField(inputs, "value", strField(inputs, "text", "")),
	}
}

func (p *Processor) convertCamera(n FlowNode) SceneCamera {
	inputs := n.Data.Inputs
	cam := SceneCamera{
		ID:       n.ID,
		Name:     nodeName(n),
		Type:     strField(inputs, "cameraType", "perspective"),
		Position: vec3Field(inputs, "position", Vec3{}),
		Rotation: vec3Field(inputs, "rotation", Vec3{}),
		Scale:    scaleField(inputs, "scale", Vec3{X: 1, Y: 1, Z: 1}),
		FOV:      numField(inputs, "fov", 75),
		Near:     numField(inputs, "near", 0.1),
		Far:      numField(inputs, "far", 1000),
	}
	if v, ok := inputs["lookAt"]; ok {
		if vec, ok := vec3Value(v, Vec3{}); ok {
			cam.LookAt = &vec
		}
	}
	return cam
}

func (p *Processor) convertLight(n FlowNode) SceneLight {
	inputs := n.Data.Inputs
	return SceneLight{
		ID:        n.ID,
		Name:      nodeName(n),
		Type:      LightType(lowerField(inputs, "lightType", string(LightAmbient))),
		Position:  vec3Field(inputs, "position", Vec3{}),
		Color:     colorField(inputs, "color", DefaultLightColor),
		Intensity: numField(inputs, "intensity", 1),
		Distance:  numField(inputs, "distance", 0),
		Decay:     numField(inputs, "decay", 0),
	}
}

func (p *Processor) convertData(n FlowNode, objects []string) DataNode {
	inputs := n.Data.Inputs
	d := DataNode{
		ID:           n.ID,
		Name:         nodeName(n),
		DataType:     DataType(lowerField(inputs, "dataType", string(DataQuestion))),
		Content:      strField(inputs, "content", ""),
		IsCorrect:    boolField(inputs, "isCorrect", false),
		NextSpace:    strField(inputs, "nextSpace", ""),
		Objects:      []string{},
		EnablePoints: boolField(inputs, "enablePoints", false),
		PointsValue:  numField(inputs, "pointsValue", 1),
		Metadata: DataMetadata{
			Difficulty: int(numField(inputs, "difficulty", 0)),
			Tags:       stringList(inputs["tags"]),
		},
	}
	if d.Metadata.Tags == nil {
		d.Metadata.Tags = []string{}
	}
	d.Objects = append(d.Objects, objects...)
	// A question carrying linked visual objects is in fact an answer.
	if d.DataType == DataQuestion && len(d.Objects) > 0 {
		d.DataType = DataAnswer
	}
	return d
}

func (p *Processor) convertEntity(n FlowNode) EntityNode {
	inputs := n.Data.Inputs
	e := EntityNode{
		ID:         n.ID,
		Name:       nodeName(n),
		EntityType: strField(inputs, "entityType", ""),
		Tags:       stringList(inputs["tags"]),
		Components: []ComponentNode{},
		Events:     []EventNode{},
	}
	if e.Tags == nil {
		e.Tags = []string{}
	}
	if raw, ok := inputs["transform"]; ok {
		obj, parsed := objectValue(raw)
		if !parsed {
			p.log.WithField("entity", n.ID).Warn("malformed transform; using defaults")
		} else {
			e.Transform = parseTransform(obj)
		}
	}
	return e
}

// parseTransform accepts both {pos,rot,scale} and
// {position,rotation,scale} key aliases, each in object or array form.
func parseTransform(obj map[string]interface{}) *Transform {
	pick := func(long, short string) interface{} {
		if v, ok := obj[long]; ok {
			return v
		}
		return obj[short]
	}
	t := &Transform{Scale: Vec3{X: 1, Y: 1, Z: 1}}
	if v := pick("position", "pos"); v != nil {
		t.Position, _ = vec3Value(v, Vec3{})
	}
	if v := pick("rotation", "rot"); v != nil {
		t.Rotation, _ = vec3Value(v, Vec3{})
	}
	if v := obj["scale"]; v != nil {
		if vec, ok := vec3Value(v, t.Scale); ok {
			t.Scale = vec
		} else {
			s := numberValue(v, 1)
			t.Scale = Vec3{X: s, Y: s, Z: s}
		}
	}
	return t
}

func (p *Processor) convertComponent(n FlowNode) ComponentNode {
	inputs := n.Data.Inputs
	c := ComponentNode{
		ID:               n.ID,
		ComponentType:    lowerField(inputs, "componentType", ""),
		Primitive:        strField(inputs, "primitive", ""),
		Color:            strField(inputs, "color", ""),
		ScriptName:       strField(inputs, "scriptName", ""),
		MaxCapacity:      numField(inputs, "maxCapacity", 20),
		FireRate:         numField(inputs, "fireRate", 2),
		Damage:           numField(inputs, "damage", 1),
		PricePerTon:      numField(inputs, "pricePerTon", 10),
		InteractionRange: numField(inputs, "interactionRange", 8),
		MaxYield:         numField(inputs, "maxYield", 3),
		AsteroidVolume:   numField(inputs, "asteroidVolume", 5),
		Hardness:         numField(inputs, "hardness", 1),
		CooldownTime:     numField(inputs, "cooldownTime", 2000),
		Props:            map[string]interface{}{},
	}
	if raw, ok := inputs["props"]; ok {
		if props, parsed := objectValue(raw); parsed {
			c.Props = props
		} else {
			p.log.WithField("component", n.ID).Warn("malformed props; using empty map")
		}
	}
	return c
}

func (p *Processor) convertEvent(n FlowNode) EventNode {
	inputs := n.Data.Inputs
	return EventNode{
		ID:        n.ID,
		EventType: lowerField(inputs, "eventType", ""),
		Source:    strField(inputs, "source", ""),
		Actions:   []ActionNode{},
	}
}

func (p *Processor) convertAction(n FlowNode) ActionNode {
	inputs := n.Data.Inputs
	a := ActionNode{
		ID:         n.ID,
		ActionType: lowerField(inputs, "actionType", ""),
		Target:     strField(inputs, "target", ""),
		Params:     map[string]interface{}{},
	}
	if raw, ok := inputs["params"]; ok {
		if params, parsed := objectValue(raw); parsed {
			a.Params = params
		} else {
			p.log.WithField("action", n.ID).Warn("malformed params; using empty map")
		}
	}
	return a
}

// syntheticObject derives a visual primitive from an entity with a render
// component: the entity supplies the transform, the component the shape.
func (p *Processor) syntheticObject(entity, component FlowNode) SceneObject {
	comp := p.convertComponent(component)
	ent := p.convertEntity(entity)

	obj := SceneObject{
		ID:       entity.ID + "-" + component.ID,
		Name:     nodeName(entity),
		Type:     ObjectBox,
		Position: Vec3{X: 0, Y: 0.5, Z: 0},
		Scale:    Vec3{X: 1, Y: 1, Z: 1},
		Color:    DefaultObjectColor,
		Width:    1,
		Height:   1,
		Depth:    1,
		Radius:   1,
	}
	if comp.Primitive != "" {
		obj.Type = ObjectType(comp.Primitive)
	}
	if comp.Color != "" {
		obj.Color = comp.Color
	}
	if ent.Transform != nil {
		obj.Position = ent.Transform.Position
		obj.Scale = ent.Transform.Scale
	}
	return obj
}

func nodeName(n FlowNode) string {
	if n.Data.Label != "" {
		return n.Data.Label
	}
	if n.Data.Name != "" {
		return n.Data.Name
	}
	return n.ID
}
