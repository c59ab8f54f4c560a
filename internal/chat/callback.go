package chat

import (
	"fmt"
	"strconv"
	"strings"
)

// Action identifies what an inline-button press asks for. The raw callback
// strings are the wire protocol shared with the deployed keyboards; they are
// parsed exactly once, here.
type Action string

const (
	ActionMainMenu        Action = "back_to_main"
	ActionProjectManager  Action = "project_manager"
	ActionAutomations     Action = "automations"
	ActionAddIdea         Action = "add_project_idea"
	ActionListIdeas       Action = "list_idea_projects"
	ActionListActive      Action = "list_active_projects"
	ActionListArchived    Action = "list_archived_projects"
	ActionShowProject     Action = "show_project"
	ActionActivateProject Action = "activate_project"
	ActionDeleteProject   Action = "delete_project"
	ActionCompleteProject Action = "complete_project"
	ActionCancelProject   Action = "cancel_project"
	ActionEditProject     Action = "edit_project"
	ActionEditName        Action = "edit_name"
	ActionEditDesc        Action = "edit_desc"
	ActionRemind          Action = "remind"
	ActionMoodboardYes    Action = "moodboard_yes"
	ActionMoodboardNo     Action = "moodboard_no"
	ActionSkipPhoto       Action = "skip_photo"
	ActionManageTemplates Action = "manage_templates"
	ActionListTemplates   Action = "list_templates"
	ActionAddTemplate     Action = "add_template"
	ActionSkipCSS         Action = "skip_css"
	ActionGenerateContent Action = "generate_content"
	ActionGenProject      Action = "gen_project"
	ActionGenTemplate     Action = "gen_template"
	ActionGenManual       Action = "gen_manual"
	ActionRemindTomorrow  Action = "remind_me_tomorrow_ideas"
)

// Command is a decoded callback: an action plus its numeric payload (entity
// id, or day count for ActionRemind).
type Command struct {
	Action Action
	ID     int64
}

// fixed tokens carry no payload.
var fixedTokens = map[string]Action{
	"back_to_main":             ActionMainMenu,
	"project_manager":          ActionProjectManager,
	"automations":              ActionAutomations,
	"add_project_idea":         ActionAddIdea,
	"list_idea_projects":       ActionListIdeas,
	"list_active_projects":     ActionListActive,
	"list_archived_projects":   ActionListArchived,
	"moodboard_yes":            ActionMoodboardYes,
	"moodboard_no":             ActionMoodboardNo,
	"skip_photo":               ActionSkipPhoto,
	"manage_templates":         ActionManageTemplates,
	"list_templates":           ActionListTemplates,
	"add_template":             ActionAddTemplate,
	"skip_css":                 ActionSkipCSS,
	"generate_content":         ActionGenerateContent,
	"gen_manual":               ActionGenManual,
	"remind_me_tomorrow_ideas": ActionRemindTomorrow,
}

// prefixed tokens carry a trailing integer payload.
var prefixedTokens = []struct {
	prefix string
	action Action
}{
	{"show_project_", ActionShowProject},
	{"activate_project_", ActionActivateProject},
	{"delete_project_", ActionDeleteProject},
	{"complete_project_", ActionCompleteProject},
	{"cancel_project_", ActionCancelProject},
	{"edit_project_", ActionEditProject},
	{"edit_name_", ActionEditName},
	{"edit_desc_", ActionEditDesc},
	{"gen_project_", ActionGenProject},
	{"gen_template_", ActionGenTemplate},
	{"remind_", ActionRemind},
}

// ParseCallback decodes raw callback data into a Command. Malformed or
// unknown data is an error; the dispatcher drops it with an audit log line.
func ParseCallback(data string) (Command, error) {
	if data == "" {
		return Command{}, fmt.Errorf("empty callback data")
	}

	if action, ok := fixedTokens[data]; ok {
		return Command{Action: action}, nil
	}

	for _, p := range prefixedTokens {
		if !strings.HasPrefix(data, p.prefix) {
			continue
		}
		id, err := strconv.ParseInt(strings.TrimPrefix(data, p.prefix), 10, 64)
		if err != nil {
			return Command{}, fmt.Errorf("callback %q: malformed payload: %w", data, err)
		}
		if id < 0 {
			return Command{}, fmt.Errorf("callback %q: negative payload", data)
		}
		return Command{Action: p.action, ID: id}, nil
	}

	return Command{}, fmt.Errorf("unknown callback %q", data)
}

// CallbackData re-encodes an action and payload into its wire form.
func CallbackData(action Action, id int64) string {
	switch action {
	case ActionShowProject, ActionActivateProject, ActionDeleteProject,
		ActionCompleteProject, ActionCancelProject, ActionEditProject,
		ActionEditName, ActionEditDesc, ActionGenProject, ActionGenTemplate,
		ActionRemind:
		return fmt.Sprintf("%s_%d", action, id)
	default:
		return string(action)
	}
}
