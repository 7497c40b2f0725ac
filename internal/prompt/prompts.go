package prompt

// DefaultStablePrefix is used when a run does not supply its own; it tells
// the agent how to report completion and where the task queue lives, since
// neither survives in the raw prompt file once the agent starts editing it.
const DefaultStablePrefix = `Work the task queue in .agent/task-list.json, highest priority pending task first. Mark a task in_progress before starting it and completed (or failed, with a note) when done. When every task is complete and the overall goal described above is satisfied, add a line of the form "- [x] TASK_COMPLETE" to this file and stop.`
