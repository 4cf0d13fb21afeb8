package postgresql

func migrations() map[int]string {
	return map[int]string{
		1: `
			CREATE TABLE workflows (
				id VARCHAR(255) PRIMARY KEY,
				workflow_group_id VARCHAR(255) NOT NULL,
				name VARCHAR(255) NOT NULL,
				description TEXT NOT NULL DEFAULT '',
				status VARCHAR(50) NOT NULL CHECK (status IN ('draft', 'published', 'unpublished')),
				trigger JSONB NOT NULL DEFAULT '{}',
				branches JSONB NOT NULL DEFAULT '[]',
				else_actions JSONB NOT NULL DEFAULT '[]',
				enabled BOOLEAN NOT NULL DEFAULT true,
				owner VARCHAR(255),
				created_at TIMESTAMP WITH TIME ZONE NOT NULL,
				updated_at TIMESTAMP WITH TIME ZONE NOT NULL,
				published_at TIMESTAMP WITH TIME ZONE
			);

			CREATE INDEX idx_workflows_group ON workflows(workflow_group_id);
			CREATE INDEX idx_workflows_status ON workflows(status);
			CREATE INDEX idx_workflows_created_at ON workflows(created_at);

			CREATE TABLE executions (
				id VARCHAR(255) PRIMARY KEY,
				workflow_id VARCHAR(255) NOT NULL,
				client_id VARCHAR(255) NOT NULL,
				triggered_at TIMESTAMP WITH TIME ZONE NOT NULL,
				state VARCHAR(50) NOT NULL,
				matched_branch_id VARCHAR(255) NOT NULL DEFAULT '',
				next_action_index INT NOT NULL DEFAULT 0,
				action_results JSONB NOT NULL DEFAULT '[]',
				trigger_data JSONB,
				error TEXT NOT NULL DEFAULT '',
				completed_at TIMESTAMP WITH TIME ZONE
			);

			CREATE INDEX idx_executions_workflow ON executions(workflow_id);
			CREATE INDEX idx_executions_client ON executions(client_id);
			CREATE INDEX idx_executions_state ON executions(state);
			CREATE INDEX idx_executions_triggered_at ON executions(triggered_at);

			CREATE TABLE schedules (
				id VARCHAR(255) PRIMARY KEY,
				workflow_id VARCHAR(255) NOT NULL,
				cron_expression VARCHAR(255) NOT NULL,
				event VARCHAR(255) NOT NULL DEFAULT '',
				next_due_at TIMESTAMP WITH TIME ZONE NOT NULL,
				created_at TIMESTAMP WITH TIME ZONE NOT NULL,
				updated_at TIMESTAMP WITH TIME ZONE NOT NULL,
				active BOOLEAN NOT NULL DEFAULT true
			);

			CREATE INDEX idx_schedules_due ON schedules(active, next_due_at);
			CREATE INDEX idx_schedules_workflow ON schedules(workflow_id);
		`,
	}
}
