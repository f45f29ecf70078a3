// 版权所有 2024 SkillFlow Authors. 版权所有。
// 此源代码的使用由 MIT 许可规范,该许可可以是
// 在LICENSE文件中找到。

/*
包 chartrace 把时间序列 CSV 渲染为 D3 v7 动态条形图 HTML。

输入 CSV 必须包含 date,name,category,value 四列（大小写不敏感），
日期为 YYYY-MM-DD，同一 (date, name) 组合重复视为输入错误。
输出为自包含的 HTML 页面，D3 从 CDN 加载，数据内嵌为 JSON，
关键帧之间插值 10 帧形成平滑动画。
*/
package chartrace
