package entity

import (
	"bytes"
	"encoding/json"
	"fmt"
	"slices"
	"strconv"
	"strings"
)

// Edital is the structured record extracted from an exam announcement.
// Every field is optional; extraction is best effort.
type Edital struct {
	Title           string          `json:"titulo_concurso,omitempty"`
	Organization    string          `json:"organizacao,omitempty"`
	Summary         string          `json:"resumo,omitempty"`
	RegistrationFee *float64        `json:"taxa_inscricao,omitempty"`
	Positions       []Position      `json:"cargos,omitempty"`
	Schedule        []ScheduleEvent `json:"cronograma,omitempty"`
	Disciplines     []Discipline    `json:"conteudo_programatico,omitempty"`
}

// Position is one job on offer.
type Position struct {
	Name         string   `json:"nome_cargo,omitempty"`
	Slots        *Slots   `json:"vagas,omitempty"`
	Salary       *float64 `json:"salario,omitempty"`
	Requirements []string `json:"requisitos,omitempty"`
	WorkSchedule string   `json:"jornada_trabalho,omitempty"`
}

// ScheduleEvent is one dated step of the exam calendar.
type ScheduleEvent struct {
	Event string `json:"evento,omitempty"`
	Date  string `json:"data,omitempty"`
}

// Discipline is a syllabus subject with its ordered topics.
type Discipline struct {
	ID     string  `json:"id,omitempty"`
	Name   string  `json:"disciplina,omitempty"`
	Topics []Topic `json:"topicos,omitempty"`
}

// Topic is a syllabus item. It decodes from a bare string or from
// {"id","nome"}; without an ID it encodes back to a bare string.
type Topic struct {
	ID   string
	Name string
}

type topicObject struct {
	ID   string `json:"id,omitempty"`
	Name string `json:"nome"`
}

func (t Topic) MarshalJSON() ([]byte, error) {
	if t.ID == "" {
		return json.Marshal(t.Name)
	}
	return json.Marshal(topicObject{ID: t.ID, Name: t.Name})
}

func (t *Topic) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if len(b) > 0 && b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*t = Topic{Name: s}
		return nil
	}
	var o topicObject
	if err := json.Unmarshal(b, &o); err != nil {
		return fmt.Errorf("topic: %w", err)
	}
	*t = Topic{ID: o.ID, Name: o.Name}
	return nil
}

// Slots holds the number of openings, which editais give either as a number
// or as free text ("Cadastro Reserva").
type Slots struct {
	Number *float64
	Text   string
}

func (s Slots) MarshalJSON() ([]byte, error) {
	if s.Number != nil {
		return json.Marshal(*s.Number)
	}
	return json.Marshal(s.Text)
}

func (s *Slots) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if len(b) > 0 && b[0] == '"' {
		var text string
		if err := json.Unmarshal(b, &text); err != nil {
			return err
		}
		*s = Slots{Text: text}
		return nil
	}
	var n float64
	if err := json.Unmarshal(b, &n); err != nil {
		return fmt.Errorf("vagas: %w", err)
	}
	*s = Slots{Number: &n}
	return nil
}

func (s *Slots) String() string {
	if s == nil {
		return ""
	}
	if s.Number != nil {
		return strconv.FormatFloat(*s.Number, 'f', -1, 64)
	}
	return s.Text
}

// TopicCount returns the number of topics across all disciplines.
func (e *Edital) TopicCount() int {
	n := 0
	for _, d := range e.Disciplines {
		n += len(d.Topics)
	}
	return n
}

// Discipline returns the discipline with the given id. An empty id never
// matches.
func (e *Edital) Discipline(id string) (*Discipline, bool) {
	if id == "" {
		return nil, false
	}
	for i := range e.Disciplines {
		if e.Disciplines[i].ID == id {
			return &e.Disciplines[i], true
		}
	}
	return nil, false
}

// Topic returns the topic with the given id and its discipline. An empty id
// never matches.
func (e *Edital) Topic(id string) (*Discipline, *Topic, bool) {
	if id == "" {
		return nil, nil, false
	}
	for i := range e.Disciplines {
		d := &e.Disciplines[i]
		for j := range d.Topics {
			if d.Topics[j].ID == id {
				return d, &d.Topics[j], true
			}
		}
	}
	return nil, nil, false
}

// Clone returns a deep copy.
func (e Edital) Clone() Edital {
	out := e
	if e.RegistrationFee != nil {
		fee := *e.RegistrationFee
		out.RegistrationFee = &fee
	}
	if e.Positions != nil {
		out.Positions = make([]Position, len(e.Positions))
		for i, p := range e.Positions {
			cp := p
			if p.Slots != nil {
				slots := *p.Slots
				if p.Slots.Number != nil {
					n := *p.Slots.Number
					slots.Number = &n
				}
				cp.Slots = &slots
			}
			if p.Salary != nil {
				sal := *p.Salary
				cp.Salary = &sal
			}
			cp.Requirements = slices.Clone(p.Requirements)
			out.Positions[i] = cp
		}
	}
	out.Schedule = slices.Clone(e.Schedule)
	if e.Disciplines != nil {
		out.Disciplines = make([]Discipline, len(e.Disciplines))
		for i, d := range e.Disciplines {
			cp := d
			cp.Topics = slices.Clone(d.Topics)
			out.Disciplines[i] = cp
		}
	}
	return out
}

// DisplayTitle returns the title or a fallback.
func (e *Edital) DisplayTitle() string {
	if t := strings.TrimSpace(e.Title); t != "" {
		return t
	}
	return "Edital"
}
