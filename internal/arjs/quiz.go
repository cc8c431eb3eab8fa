package arjs

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/universo-platformo/updl-engine/internal/updl"
)

type quizAnswer struct {
	ID          string  `json:"id"`
	Content     string  `json:"content"`
	IsCorrect   bool    `json:"isCorrect"`
	PointsValue float64 `json:"pointsValue"`
}

type quizScene struct {
	SpaceID        string              `json:"spaceId"`
	Order          int                 `json:"order"`
	IsLast         bool                `json:"isLast"`
	IsResultsScene bool                `json:"isResultsScene"`
	Question       string              `json:"question"`
	Answers        []quizAnswer        `json:"answers"`
	ShowPoints     bool                `json:"showPoints"`
	Lead           updl.LeadCollection `json:"lead"`
}

// quizData flattens a multi-scene chain into the shape the generated
// viewer script pages through.
func quizData(ms *updl.MultiScene) []quizScene {
	out := make([]quizScene, 0, len(ms.Scenes))
	for _, scene := range ms.Scenes {
		qs := quizScene{
			SpaceID:        scene.SpaceID,
			Order:          scene.Order,
			IsLast:         scene.IsLast,
			IsResultsScene: scene.IsResultsScene,
			Answers:        []quizAnswer{},
		}
		if scene.SpaceData != nil {
			qs.ShowPoints = scene.SpaceData.ShowPoints
			qs.Lead = scene.SpaceData.LeadCollection
		}
		for _, d := range scene.DataNodes {
			switch d.DataType {
			case updl.DataQuestion:
				if qs.Question == "" {
					qs.Question = d.Content
				}
			case updl.DataAnswer:
				qs.Answers = append(qs.Answers, quizAnswer{
					ID:          d.ID,
					Content:     d.Content,
					IsCorrect:   d.IsCorrect,
					PointsValue: d.PointsValue,
				})
			}
		}
		out = append(out, qs)
	}
	return out
}

// quizOverlay emits the DOM overlay plus the paging script for a
// multi-scene quiz. The embedded data is JSON-marshalled, which escapes
// angle brackets, so authored content cannot terminate the script tag.
func quizOverlay(ms *updl.MultiScene) string {
	data, err := json.Marshal(quizData(ms))
	if err != nil {
		// Resolved scenes are plain values; marshalling them cannot
		// realistically fail, but degrade to an empty quiz if it does.
		data = []byte("[]")
	}

	var b strings.Builder
	b.WriteString(`<style>
    #quiz-overlay { position: fixed; bottom: 0; left: 0; right: 0; padding: 16px; background: rgba(0,0,0,0.65); color: #fff; font-family: sans-serif; text-align: center; }
    #quiz-overlay button { margin: 6px; padding: 10px 18px; border: none; border-radius: 6px; background: #1976d2; color: #fff; font-size: 15px; }
    #quiz-overlay input { margin: 4px; padding: 8px; border-radius: 4px; border: none; }
</style>
<div id="quiz-overlay">
    <div id="quiz-question"></div>
    <div id="quiz-answers"></div>
    <div id="quiz-points"></div>
</div>
`)
	fmt.Fprintf(&b, "<script>\nvar quizScenes = %s;\n", data)
	b.WriteString(`var currentScene = 0;
var totalPoints = 0;

function showScene(index) {
    for (var i = 0; i < quizScenes.length; i++) {
        var group = document.getElementById('quiz-scene-' + i);
        if (group) { group.setAttribute('visible', i === index ? 'true' : 'false'); }
    }
    currentScene = index;
    renderOverlay();
}

function renderOverlay() {
    var scene = quizScenes[currentScene];
    if (!scene) { return; }
    var question = document.getElementById('quiz-question');
    var answers = document.getElementById('quiz-answers');
    var points = document.getElementById('quiz-points');
    answers.innerHTML = '';
    if (scene.isResultsScene) {
        question.textContent = 'Results';
        points.textContent = scene.showPoints ? ('Points: ' + totalPoints) : '';
        renderLeadForm(scene, answers);
        return;
    }
    question.textContent = scene.question || '';
    points.textContent = scene.showPoints ? ('Points: ' + totalPoints) : '';
    scene.answers.forEach(function (answer) {
        var btn = document.createElement('button');
        btn.textContent = answer.content;
        btn.addEventListener('click', function () { selectAnswer(answer); });
        answers.appendChild(btn);
    });
}

function selectAnswer(answer) {
    if (answer.isCorrect) { totalPoints += answer.pointsValue; }
    if (currentScene + 1 < quizScenes.length) {
        showScene(currentScene + 1);
    } else {
        renderOverlay();
    }
}

function renderLeadForm(scene, container) {
    var lead = scene.lead || {};
    if (!lead.collectName && !lead.collectEmail && !lead.collectPhone) { return; }
    var form = document.createElement('form');
    if (lead.collectName) { form.appendChild(leadInput('text', 'name', 'Name')); }
    if (lead.collectEmail) { form.appendChild(leadInput('email', 'email', 'Email')); }
    if (lead.collectPhone) { form.appendChild(leadInput('tel', 'phone', 'Phone')); }
    var submit = document.createElement('button');
    submit.type = 'submit';
    submit.textContent = 'Send';
    form.appendChild(submit);
    form.addEventListener('submit', function (e) {
        e.preventDefault();
        container.textContent = 'Thank you!';
    });
    container.appendChild(form);
}

function leadInput(type, name, placeholder) {
    var input = document.createElement('input');
    input.type = type;
    input.name = name;
    input.placeholder = placeholder;
    return input;
}

showScene(0);
</script>
`)
	return b.String()
}
