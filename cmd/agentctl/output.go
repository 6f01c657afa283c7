package main

import (
	"encoding/json"
	"fmt"
	"time"

	"agentctl/internal/domain"
	"agentctl/internal/infra/session"
)

func writeJSON(value any) error {
	data, err := json.MarshalIndent(value, "", "  ")
	if err != nil {
		return err
	}
	fmt.Println(string(data))
	return nil
}

func printAgents(agents []domain.Agent, jsonOutput bool) error {
	if jsonOutput {
		return writeJSON(agents)
	}
	fmt.Printf("agents=%d\n", len(agents))
	for _, agent := range agents {
		state := "disabled"
		if agent.Enabled {
			state = "enabled"
		}
		fmt.Printf("%s\t%s\t%s\t%s\n", agent.ID, agent.Name, agent.Model, state)
	}
	return nil
}

func printAgent(agent domain.Agent, jsonOutput bool) error {
	if jsonOutput {
		return writeJSON(agent)
	}
	fmt.Printf("id=%s name=%s model=%s enabled=%t\n", agent.ID, agent.Name, agent.Model, agent.Enabled)
	if agent.Description != "" {
		fmt.Printf("description=%s\n", agent.Description)
	}
	if len(agent.ToolIDs) > 0 {
		fmt.Printf("tools=%v\n", agent.ToolIDs)
	}
	if agent.TemplateID != "" {
		fmt.Printf("template=%s\n", agent.TemplateID)
	}
	return nil
}

func printTools(tools []domain.Tool, jsonOutput bool) error {
	if jsonOutput {
		return writeJSON(tools)
	}
	fmt.Printf("tools=%d\n", len(tools))
	for _, tool := range tools {
		fmt.Printf("%s\t%s\t%s\n", tool.ID, tool.Name, tool.Integration)
	}
	return nil
}

func printTool(tool domain.Tool, jsonOutput bool) error {
	if jsonOutput {
		return writeJSON(tool)
	}
	fmt.Printf("id=%s name=%s integration=%s\n", tool.ID, tool.Name, tool.Integration)
	if tool.Description != "" {
		fmt.Printf("description=%s\n", tool.Description)
	}
	if len(tool.Parameters) > 0 {
		fmt.Println(string(tool.Parameters))
	}
	return nil
}

func printTemplates(templates []domain.Template, jsonOutput bool) error {
	if jsonOutput {
		return writeJSON(templates)
	}
	fmt.Printf("templates=%d\n", len(templates))
	for _, template := range templates {
		fmt.Printf("%s\t%s\t%s\n", template.ID, template.Name, template.Model)
	}
	return nil
}

func printTemplate(template domain.Template, jsonOutput bool) error {
	if jsonOutput {
		return writeJSON(template)
	}
	fmt.Printf("id=%s name=%s model=%s\n", template.ID, template.Name, template.Model)
	if template.Description != "" {
		fmt.Printf("description=%s\n", template.Description)
	}
	if len(template.ToolIDs) > 0 {
		fmt.Printf("tools=%v\n", template.ToolIDs)
	}
	return nil
}

func printIntegrations(integrations []domain.Integration, jsonOutput bool) error {
	if jsonOutput {
		return writeJSON(integrations)
	}
	fmt.Printf("integrations=%d\n", len(integrations))
	for _, integration := range integrations {
		credential := "unset"
		if integration.CredentialSet {
			credential = "set"
		}
		fmt.Printf("%s\t%s\t%s\tcredential=%s\n", integration.ID, integration.Name, integration.Kind, credential)
	}
	return nil
}

func printIntegration(integration domain.Integration, jsonOutput bool) error {
	if jsonOutput {
		return writeJSON(integration)
	}
	fmt.Printf("id=%s name=%s kind=%s enabled=%t credential=%t\n",
		integration.ID, integration.Name, integration.Kind, integration.Enabled, integration.CredentialSet)
	if integration.Endpoint != "" {
		fmt.Printf("endpoint=%s\n", integration.Endpoint)
	}
	return nil
}

func printExecutions(executions []domain.Execution, jsonOutput bool) error {
	if jsonOutput {
		return writeJSON(executions)
	}
	fmt.Printf("executions=%d\n", len(executions))
	for _, execution := range executions {
		fmt.Printf("%s\t%s\t%s\t%s\n",
			execution.ID, execution.AgentID, execution.Status, execution.StartedAt.Format(time.RFC3339))
	}
	return nil
}

func printExecution(execution domain.Execution, jsonOutput bool) error {
	if jsonOutput {
		return writeJSON(execution)
	}
	fmt.Printf("id=%s agent=%s status=%s\n", execution.ID, execution.AgentID, execution.Status)
	if len(execution.Output) > 0 {
		fmt.Println(string(execution.Output))
	}
	if execution.Error != "" {
		fmt.Printf("error=%s\n", execution.Error)
	}
	if execution.DurationMs > 0 {
		fmt.Printf("duration=%dms\n", execution.DurationMs)
	}
	return nil
}

func printDashboard(summary domain.DashboardSummary, jsonOutput bool) error {
	if jsonOutput {
		return writeJSON(summary)
	}
	fmt.Printf("total=%d running=%d failed24h=%d avgDuration=%dms\n",
		summary.TotalExecutions, summary.RunningExecutions, summary.FailedLast24h, summary.AvgDurationMs)
	for agentID, count := range summary.ExecutionsByAgent {
		fmt.Printf("%s\t%d\n", agentID, count)
	}
	return nil
}

func printSession(sess session.Session, jsonOutput bool) error {
	if jsonOutput {
		return writeJSON(map[string]any{
			"endpoint": sess.Endpoint,
			"user":     sess.User,
		})
	}
	fmt.Printf("logged in as %s at %s\n", sess.User, sess.Endpoint)
	return nil
}
