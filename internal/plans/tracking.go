package plans

import (
	"context"
	"slices"
	"strings"

	"github.com/google/uuid"

	"github.com/joseph-ayodele/edital-planner/constants"
	"github.com/joseph-ayodele/edital-planner/internal/common"
	"github.com/joseph-ayodele/edital-planner/internal/entity"
)

const (
	msgLinkRequired = "Título e URL são obrigatórios."
	msgLinkUpdate   = "Por favor, preencha o título e uma URL válida."
)

// ToggleTopic flips the studied flag of a topic and returns the new value.
func (s *Store) ToggleTopic(ctx context.Context, topicID string) (bool, error) {
	var checked bool
	err := s.mutate(ctx, "toggle_topic", func(p *entity.StudyPlan) error {
		if _, _, ok := p.Edital.Topic(topicID); !ok {
			return missing("Tópico")
		}
		checked = !p.CheckedTopics[topicID]
		p.CheckedTopics[topicID] = checked
		return nil
	})
	return checked, err
}

// AddScore records a mock exam percentage for a discipline.
func (s *Store) AddScore(ctx context.Context, disciplineID string, score float64) error {
	if err := common.NewValidator().Field("score", score, common.Percent).Err(); err != nil {
		return err
	}
	return s.mutate(ctx, "add_score", func(p *entity.StudyPlan) error {
		if _, ok := p.Edital.Discipline(disciplineID); !ok {
			return missing("Disciplina")
		}
		p.MockScores[disciplineID] = append(p.MockScores[disciplineID], score)
		return nil
	})
}

// AddSubTopic appends a checklist item under a topic. Blank text is ignored
// and returns a zero SubTopic.
func (s *Store) AddSubTopic(ctx context.Context, topicID, text string) (entity.SubTopic, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return entity.SubTopic{}, nil
	}
	sub := entity.SubTopic{ID: uuid.NewString(), Text: text}
	err := s.mutate(ctx, "add_subtopic", func(p *entity.StudyPlan) error {
		if _, _, ok := p.Edital.Topic(topicID); !ok {
			return missing("Tópico")
		}
		p.SubTopics[topicID] = append(p.SubTopics[topicID], sub)
		return nil
	})
	if err != nil {
		return entity.SubTopic{}, err
	}
	return sub, nil
}

// ToggleSubTopic flips the completed flag of a sub-topic.
func (s *Store) ToggleSubTopic(ctx context.Context, topicID, subID string) error {
	return s.editSubTopic(ctx, "toggle_subtopic", topicID, subID, func(st *entity.SubTopic) {
		st.Completed = !st.Completed
	})
}

// UpdateSubTopic replaces the text of a sub-topic. Blank text is ignored.
func (s *Store) UpdateSubTopic(ctx context.Context, topicID, subID, text string) error {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil
	}
	return s.editSubTopic(ctx, "update_subtopic", topicID, subID, func(st *entity.SubTopic) {
		st.Text = text
	})
}

func (s *Store) editSubTopic(ctx context.Context, op, topicID, subID string, fn func(*entity.SubTopic)) error {
	return s.mutate(ctx, op, func(p *entity.StudyPlan) error {
		subs := p.SubTopics[topicID]
		i := slices.IndexFunc(subs, func(st entity.SubTopic) bool { return st.ID == subID })
		if i < 0 {
			return missing("Subtópico")
		}
		fn(&subs[i])
		return nil
	})
}

// DeleteSubTopic removes a sub-topic.
func (s *Store) DeleteSubTopic(ctx context.Context, topicID, subID string) error {
	return s.mutate(ctx, "delete_subtopic", func(p *entity.StudyPlan) error {
		subs := p.SubTopics[topicID]
		i := slices.IndexFunc(subs, func(st entity.SubTopic) bool { return st.ID == subID })
		if i < 0 {
			return missing("Subtópico")
		}
		p.SubTopics[topicID] = slices.Delete(subs, i, i+1)
		return nil
	})
}

// AddLink attaches a reference link to a discipline or a topic.
func (s *Store) AddLink(ctx context.Context, scope constants.LinkScope, scopeID, title, url string) (entity.Link, error) {
	title, url = strings.TrimSpace(title), strings.TrimSpace(url)
	if title == "" || url == "" {
		return entity.Link{}, common.InputError(msgLinkRequired)
	}
	if err := common.NewValidator().Field("url", url, common.HTTPURL).Err(); err != nil {
		return entity.Link{}, err
	}
	link := entity.Link{ID: uuid.NewString(), Title: title, URL: url}
	err := s.mutate(ctx, "add_link", func(p *entity.StudyPlan) error {
		links, err := linkMap(p, scope, scopeID)
		if err != nil {
			return err
		}
		links[scopeID] = append(links[scopeID], link)
		return nil
	})
	if err != nil {
		return entity.Link{}, err
	}
	return link, nil
}

// UpdateLink replaces the title and URL of a link.
func (s *Store) UpdateLink(ctx context.Context, scope constants.LinkScope, scopeID, linkID, title, url string) error {
	title, url = strings.TrimSpace(title), strings.TrimSpace(url)
	if title == "" || !common.IsHTTPURL(url) {
		return common.InputError(msgLinkUpdate)
	}
	return s.mutate(ctx, "update_link", func(p *entity.StudyPlan) error {
		links, err := linkMap(p, scope, scopeID)
		if err != nil {
			return err
		}
		list := links[scopeID]
		i := slices.IndexFunc(list, func(l entity.Link) bool { return l.ID == linkID })
		if i < 0 {
			return missing("Link")
		}
		list[i].Title, list[i].URL = title, url
		return nil
	})
}

// DeleteLink removes a link.
func (s *Store) DeleteLink(ctx context.Context, scope constants.LinkScope, scopeID, linkID string) error {
	return s.mutate(ctx, "delete_link", func(p *entity.StudyPlan) error {
		links, err := linkMap(p, scope, scopeID)
		if err != nil {
			return err
		}
		list := links[scopeID]
		i := slices.IndexFunc(list, func(l entity.Link) bool { return l.ID == linkID })
		if i < 0 {
			return missing("Link")
		}
		links[scopeID] = slices.Delete(list, i, i+1)
		return nil
	})
}

// linkMap returns the link map for scope after checking that scopeID names
// an existing discipline or topic.
func linkMap(p *entity.StudyPlan, scope constants.LinkScope, scopeID string) (map[string][]entity.Link, error) {
	switch scope {
	case constants.ScopeDiscipline:
		if _, ok := p.Edital.Discipline(scopeID); !ok {
			return nil, missing("Disciplina")
		}
		return p.DisciplineLinks, nil
	case constants.ScopeTopic:
		if _, _, ok := p.Edital.Topic(scopeID); !ok {
			return nil, missing("Tópico")
		}
		return p.TopicLinks, nil
	}
	return nil, common.InputError("Escopo de link inválido.")
}

func missing(what string) error {
	return common.NewAppError(common.CodeInvalidInput, what+" não encontrado.", common.ErrNotFound)
}
