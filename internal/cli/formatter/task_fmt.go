package formatter

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/alexanderramin/stagehand/internal/domain"
)

func dateOrDash(t *time.Time) string {
	if t == nil {
		return Dim("--")
	}
	return t.Format("2006-01-02")
}

func planOrDash(plan string) string {
	if plan == "" {
		return Dim("--")
	}
	return StylePurple.Render(plan)
}

// FormatTaskList renders tasks grouped by state in workflow order.
func FormatTaskList(tasks []*domain.Task) string {
	byState := make(map[domain.TaskState][]*domain.Task)
	for _, t := range tasks {
		byState[t.State] = append(byState[t.State], t)
	}

	order := []domain.TaskState{domain.TaskOpen, domain.TaskTodo, domain.TaskDoing, domain.TaskDone, domain.TaskClosed}
	var sections []string
	for _, state := range order {
		group := byState[state]
		if len(group) == 0 {
			continue
		}
		sort.Slice(group, func(i, j int) bool { return group[i].ID < group[j].ID })

		rows := make([][]string, 0, len(group))
		for _, t := range group {
			rows = append(rows, []string{
				Bold(t.ID),
				t.Name,
				planOrDash(t.Plan),
				t.Owner,
			})
		}
		sections = append(sections,
			StatePill(state)+"\n"+RenderTable([]string{"ID", "NAME", "PLAN", "OWNER"}, rows))
	}
	if len(sections) == 0 {
		return Dim("No tasks.")
	}
	return strings.Join(sections, "\n")
}

// FormatTaskInspect renders one task with its full note log, newest first.
func FormatTaskInspect(t *domain.Task) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s  %s\n", Bold(t.ID), StatePill(t.State))
	fmt.Fprintf(&b, "%s %s\n", Dim("Name:"), t.Name)
	if t.Description != "" {
		fmt.Fprintf(&b, "%s %s\n", Dim("Description:"), t.Description)
	}
	fmt.Fprintf(&b, "%s %s\n", Dim("Plan:"), planOrDash(t.Plan))
	fmt.Fprintf(&b, "%s %s\n", Dim("Owner:"), t.Owner)
	fmt.Fprintf(&b, "%s %s %s\n", Dim("Created:"), t.CreateDate.Format("2006-01-02"), Dim("by "+t.Creator))
	b.WriteString("\n")
	b.WriteString(Header("Notes"))
	b.WriteString("\n")
	if t.Notes == "" {
		b.WriteString(Dim("(none)"))
	} else {
		for _, line := range strings.Split(t.Notes, "\n") {
			b.WriteString(formatNoteLine(line))
			b.WriteString("\n")
		}
	}
	return b.String()
}

// formatNoteLine dims the timestamp prefix of a "[ts] user: message" line.
func formatNoteLine(line string) string {
	if strings.HasPrefix(line, "[") {
		if end := strings.Index(line, "] "); end >= 0 {
			return Dim(line[:end+1]) + line[end+1:]
		}
	}
	return line
}

// FormatApplicationList renders the application registry as a table.
func FormatApplicationList(apps []*domain.Application) string {
	rows := make([][]string, 0, len(apps))
	for _, a := range apps {
		rows = append(rows, []string{
			Bold(a.Acronym),
			a.Description,
			fmt.Sprintf("%d", a.RNumber),
			dateOrDash(a.StartDate),
			dateOrDash(a.EndDate),
		})
	}
	return RenderTable([]string{"ACRONYM", "DESCRIPTION", "RNUMBER", "START", "END"}, rows)
}

// FormatApplicationInspect renders one application with its permit mapping.
func FormatApplicationInspect(a *domain.Application) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s  %s\n", Bold(a.Acronym), a.Description)
	fmt.Fprintf(&b, "%s %d\n", Dim("Running number:"), a.RNumber)
	fmt.Fprintf(&b, "%s %s → %s\n", Dim("Dates:"), dateOrDash(a.StartDate), dateOrDash(a.EndDate))
	b.WriteString("\n")
	b.WriteString(Header("Permit groups"))
	b.WriteString("\n")
	for _, stage := range domain.Stages {
		group := a.Permits.ForStage(stage)
		if group == "" {
			fmt.Fprintf(&b, "%-8s %s\n", stage, Dim("(locked)"))
			continue
		}
		fmt.Fprintf(&b, "%-8s %s\n", stage, StyleBlue.Render(group))
	}
	return b.String()
}

// FormatPlanList renders an application's plans as a table.
func FormatPlanList(plans []*domain.Plan) string {
	rows := make([][]string, 0, len(plans))
	for _, p := range plans {
		rows = append(rows, []string{
			StylePurple.Render(p.Name),
			dateOrDash(p.StartDate),
			dateOrDash(p.EndDate),
		})
	}
	return RenderTable([]string{"PLAN", "START", "END"}, rows)
}

// FormatUserList renders user accounts as a table.
func FormatUserList(users []*domain.User) string {
	rows := make([][]string, 0, len(users))
	for _, u := range users {
		email := u.Email
		if email == "" {
			email = Dim("--")
		}
		rows = append(rows, []string{Bold(u.Username), email, EnabledPill(u.Enabled)})
	}
	return RenderTable([]string{"USERNAME", "EMAIL", "STATUS"}, rows)
}

// FormatRoles renders a stage→allowed map in workflow order.
func FormatRoles(roles map[domain.Stage]bool) string {
	var b strings.Builder
	for _, stage := range domain.Stages {
		mark := StyleRed.Render("✖")
		if roles[stage] {
			mark = StyleGreen.Render("✔")
		}
		fmt.Fprintf(&b, "%-8s %s\n", stage, mark)
	}
	return b.String()
}
